package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/d5/tengo/v2"
)

var (
	placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

	// The only characters permitted in a substituted expression. Anything
	// else means the author's template smuggled something past substitution
	// and the expression must never be evaluated.
	safeExprRe = regexp.MustCompile(`^[0-9+\-*/().\s]*$`)
)

// formulaHandler substitutes {field} placeholders with numeric row values
// and evaluates the resulting arithmetic expression in a tengo sandbox.
type formulaHandler struct{}

func (formulaHandler) Validate(params Params) error {
	formula, ok := params["formula"].(string)
	if !ok || strings.TrimSpace(formula) == "" {
		return fmt.Errorf("formula must not be empty")
	}

	// The template with placeholders stripped must already be arithmetic;
	// the full check runs again after substitution at execution time.
	stripped := placeholderRe.ReplaceAllString(formula, "0")
	if !safeExprRe.MatchString(stripped) {
		return fmt.Errorf("formula contains unsafe characters")
	}
	return nil
}

func (formulaHandler) Execute(_ interface{}, params Params, ctx Context) (interface{}, error) {
	formula, _ := params["formula"].(string)

	expr := placeholderRe.ReplaceAllStringFunc(formula, func(match string) string {
		name := match[1 : len(match)-1]
		return formatOperand(numericValue(ctx.Row[name]))
	})

	// Safety boundary: the check runs on the final substituted string, not
	// the author's template. Substituted values are numbers, so any unsafe
	// character here came from the template itself.
	if !safeExprRe.MatchString(expr) {
		return nil, fmt.Errorf("formula contains unsafe characters after substitution: %q", expr)
	}
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("formula is empty after substitution")
	}

	result, err := evalArithmetic(expr)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil, fmt.Errorf("formula produced a non-finite result")
	}
	return result, nil
}

// evalArithmetic runs the sanitized expression through the tengo sandbox
func evalArithmetic(expr string) (float64, error) {
	script := tengo.NewScript([]byte("__result__ := " + expr))

	compiled, err := script.Compile()
	if err != nil {
		return 0, fmt.Errorf("invalid formula expression: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return 0, fmt.Errorf("formula evaluation failed: %w", err)
	}

	v := compiled.Get("__result__")
	switch v.ValueType() {
	case "int", "float":
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("formula produced a non-numeric result (%s)", v.ValueType())
	}
}

// formatOperand renders a substituted value so the sandbox always performs
// floating point arithmetic, never truncating integer division.
func formatOperand(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if strings.HasPrefix(s, "-") {
		// Keep unary minus out of the expression grammar
		return "(0.0 " + s[:1] + " " + s[1:] + ")"
	}
	return s
}

// numericValue coerces a row value to a number; missing or non-numeric
// values substitute as 0 so a hostile field value can never inject text.
func numericValue(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}
