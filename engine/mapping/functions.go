package mapping

import "golang.org/x/text/cases"
import "golang.org/x/text/language"

// FuncFamily groups Cypher function names by how engine/transform
// dispatches them, mirroring family table.
type FuncFamily int

const (
	FamUnknown FuncFamily = iota
	FamEntity
	FamAggregate
	FamStringDirect
	FamStringNAry
	FamMathUnary
	FamMathSpecial
	FamNoArg
	FamConversion
	FamPath
	FamList
	FamTemporal
	FamAlgo
)

// FuncEntry describes one dispatch table row.
type FuncEntry struct {
	Family FuncFamily
	// SQLName is the direct SQL function/keyword this Cypher function
	// maps to, for the families whose handler is "call SQLName(args)"
	// verbatim (FamAggregate, FamStringDirect and FamMathUnary
	// entries). Empty when the handler needs bespoke logic.
	SQLName string
}

// foldCase upper-cases function names for case-insensitive lookup in
// Functions; the lexer folds keywords with strings.ToUpper instead.
var foldCase = cases.Upper(language.Und)

// FoldFuncName upper-cases name the same way everywhere it is looked
// up, so "toUpper", "TOUPPER" and "ToUpper" all hit the same table row.
func FoldFuncName(name string) string {
	return foldCase.String(name)
}

// Functions is the static, case-insensitive (keys are upper-cased)
// dispatch table from Cypher function name to family + direct SQL
// mapping, the single source of truth FuncDispatch consults.
var Functions = map[string]FuncEntry{
	// Entity
	"ID":         {Family: FamEntity},
	"LABELS":     {Family: FamEntity},
	"PROPERTIES": {Family: FamEntity},
	"KEYS":       {Family: FamEntity},
	"TYPE":       {Family: FamEntity},
	"GRAPH":      {Family: FamEntity},

	// Aggregates
	"COUNT":   {Family: FamAggregate, SQLName: "COUNT"},
	"MIN":     {Family: FamAggregate, SQLName: "MIN"},
	"MAX":     {Family: FamAggregate, SQLName: "MAX"},
	"AVG":     {Family: FamAggregate, SQLName: "AVG"},
	"SUM":     {Family: FamAggregate, SQLName: "SUM"},
	"COLLECT": {Family: FamAggregate},

	// String, 1-arg direct map
	"TOUPPER": {Family: FamStringDirect, SQLName: "UPPER"},
	"TOLOWER": {Family: FamStringDirect, SQLName: "LOWER"},
	"TRIM":    {Family: FamStringDirect, SQLName: "TRIM"},
	"LTRIM":   {Family: FamStringDirect, SQLName: "LTRIM"},
	"RTRIM":   {Family: FamStringDirect, SQLName: "RTRIM"},
	"SIZE":    {Family: FamStringDirect, SQLName: "LENGTH"},
	"LENGTH":  {Family: FamStringDirect, SQLName: "LENGTH"},
	"REVERSE": {Family: FamStringDirect, SQLName: "REVERSE"},

	// String, n-arg
	"SUBSTRING":  {Family: FamStringNAry},
	"REPLACE":    {Family: FamStringNAry},
	"SPLIT":      {Family: FamStringNAry},
	"LEFT":       {Family: FamStringNAry},
	"RIGHT":      {Family: FamStringNAry},
	"STARTSWITH": {Family: FamStringNAry},
	"ENDSWITH":   {Family: FamStringNAry},
	"CONTAINS_FN": {Family: FamStringNAry}, // contains_fn(s, sub): function form of the substring test; CONTAINS itself is the reserved operator word

	// Math, 1-arg
	"ABS":   {Family: FamMathUnary, SQLName: "ABS"},
	"CEIL":  {Family: FamMathUnary, SQLName: "CEIL"},
	"FLOOR": {Family: FamMathUnary, SQLName: "FLOOR"},
	"SIGN":  {Family: FamMathUnary, SQLName: "SIGN"},
	"SQRT":  {Family: FamMathUnary, SQLName: "SQRT"},
	"LOG":   {Family: FamMathUnary, SQLName: "LN"},
	"LOG10": {Family: FamMathUnary, SQLName: "LOG10"},
	"EXP":   {Family: FamMathUnary, SQLName: "EXP"},
	"SIN":   {Family: FamMathUnary, SQLName: "SIN"},
	"COS":   {Family: FamMathUnary, SQLName: "COS"},
	"TAN":   {Family: FamMathUnary, SQLName: "TAN"},
	"ASIN":  {Family: FamMathUnary, SQLName: "ASIN"},
	"ACOS":  {Family: FamMathUnary, SQLName: "ACOS"},
	"ATAN":  {Family: FamMathUnary, SQLName: "ATAN"},

	// Math, special
	"ROUND": {Family: FamMathSpecial},

	// No-arg
	"RAND":       {Family: FamNoArg},
	"RANDOM":     {Family: FamNoArg},
	"PI":         {Family: FamNoArg},
	"E":          {Family: FamNoArg},

	// Conversion
	"COALESCE":  {Family: FamConversion},
	"TOSTRING":  {Family: FamConversion},
	"TOINTEGER": {Family: FamConversion},
	"TOFLOAT":   {Family: FamConversion},
	"TOBOOLEAN": {Family: FamConversion},

	// Path
	"NODES":         {Family: FamPath},
	"RELATIONSHIPS": {Family: FamPath},
	"RELS":          {Family: FamPath},
	"STARTNODE":     {Family: FamPath},
	"ENDNODE":       {Family: FamPath},

	// List (LENGTH and SIZE above always map to SQL LENGTH(); dispatch
	// does not look at the argument's type, so list and path arguments
	// are not measured as lists or paths)
	"HEAD":  {Family: FamList},
	"TAIL":  {Family: FamList},
	"LAST":  {Family: FamList},
	"RANGE": {Family: FamList},

	// Temporal
	"TIMESTAMP":    {Family: FamTemporal},
	"DATE":         {Family: FamTemporal},
	"TIME":         {Family: FamTemporal},
	"DATETIME":     {Family: FamTemporal},
	"LOCALDATETIME": {Family: FamTemporal},
	"RANDOMUUID":   {Family: FamTemporal},

	// Graph algorithms
	"PAGERANK":              {Family: FamAlgo},
	"TOPPAGERANK":           {Family: FamAlgo},
	"PERSONALIZEDPAGERANK":  {Family: FamAlgo},
	"LABELPROPAGATION":      {Family: FamAlgo},
	"COMMUNITIES":           {Family: FamAlgo},
	"COMMUNITYOF":           {Family: FamAlgo},
	"COMMUNITYMEMBERS":      {Family: FamAlgo},
	"COMMUNITYCOUNT":        {Family: FamAlgo},
}

// Lookup resolves a Cypher function name (any case) to its dispatch
// entry. ok is false for unrecognized names, which the caller
// surfaces as UnsupportedFunction.
func Lookup(name string) (FuncEntry, bool) {
	e, ok := Functions[FoldFuncName(name)]
	return e, ok
}
