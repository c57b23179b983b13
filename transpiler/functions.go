package transpiler

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub008/ast"
	"github.com/Sayiza/orapgsync-sub008/metadata"
)

// rewriteFunctionCall applies §4.7's mandatory Oracle->PostgreSQL function
// table. Grounded on the teacher's transpileFunctionCall in
// transpiler/expressions.go (a big per-name switch producing target-dialect
// text) and on other_examples/axfor-aproxy's functionMap table shape (plain
// rename vs. "needs special handling" dispatch). Unmapped names fall through
// to qualifying the call as a user/package function, matching §4.7's
// fallback rule.
func (r *rewriter) rewriteFunctionCall(fc *ast.FunctionCall) (string, error) {
	name, ok := fc.Function.(*ast.Identifier)
	if !ok {
		return r.userFunctionCall(fc)
	}
	upper := strings.ToUpper(name.Value)

	args, err := r.exprList(fc.Args)
	if err != nil {
		return "", err
	}

	switch upper {
	case "NVL":
		return fmt.Sprintf("COALESCE(%s)", strings.Join(args, ", ")), nil
	case "NVL2":
		if len(args) != 3 {
			return "", semanticViolation(fc, "NVL2 requires exactly 3 arguments")
		}
		return fmt.Sprintf("(CASE WHEN %s IS NOT NULL THEN %s ELSE %s END)", args[0], args[1], args[2]), nil
	case "DECODE":
		return rewriteDecode(args), nil
	case "SUBSTR":
		return fmt.Sprintf("SUBSTRING(%s)", strings.Join(args, ", ")), nil
	case "INSTR":
		return rewriteInstr(args), nil
	case "LENGTH", "LENGTHB", "LENGTHC":
		return fmt.Sprintf("LENGTH(%s)", args[0]), nil
	case "LPAD", "RPAD":
		return fmt.Sprintf("%s(%s)", upper, strings.Join(args, ", ")), nil
	case "TRIM", "LTRIM", "RTRIM":
		return fmt.Sprintf("%s(%s)", upper, strings.Join(args, ", ")), nil
	case "UPPER", "LOWER", "INITCAP":
		return fmt.Sprintf("%s(%s)", upper, strings.Join(args, ", ")), nil
	case "TRANSLATE":
		return fmt.Sprintf("TRANSLATE(%s)", strings.Join(args, ", ")), nil
	case "REPLACE":
		return fmt.Sprintf("REPLACE(%s)", strings.Join(args, ", ")), nil
	case "CONCAT":
		if len(args) != 2 {
			return "", semanticViolation(fc, "CONCAT requires exactly 2 arguments")
		}
		return fmt.Sprintf("(%s || %s)", args[0], args[1]), nil
	case "TO_CHAR":
		return rewriteToChar(args), nil
	case "TO_NUMBER":
		if len(args) == 1 {
			return fmt.Sprintf("(%s)::numeric", args[0]), nil
		}
		return fmt.Sprintf("TO_NUMBER(%s)", strings.Join(args, ", ")), nil
	case "TO_DATE", "TO_TIMESTAMP":
		return fmt.Sprintf("TO_TIMESTAMP(%s)", strings.Join(args, ", ")), nil
	case "SYSDATE":
		return "CURRENT_TIMESTAMP", nil
	case "SYSTIMESTAMP":
		return "CLOCK_TIMESTAMP()", nil
	case "ADD_MONTHS":
		if len(args) != 2 {
			return "", semanticViolation(fc, "ADD_MONTHS requires exactly 2 arguments")
		}
		return fmt.Sprintf("(%s + (%s || ' months')::interval)", args[0], args[1]), nil
	case "MONTHS_BETWEEN":
		if len(args) != 2 {
			return "", semanticViolation(fc, "MONTHS_BETWEEN requires exactly 2 arguments")
		}
		return fmt.Sprintf("(EXTRACT(YEAR FROM age(%s, %s)) * 12 + EXTRACT(MONTH FROM age(%s, %s)))", args[0], args[1], args[0], args[1]), nil
	case "LAST_DAY":
		return fmt.Sprintf("(date_trunc('month', %s) + interval '1 month' - interval '1 day')", args[0]), nil
	case "NEXT_DAY":
		return fmt.Sprintf("orapgsync_next_day(%s)", strings.Join(args, ", ")), nil
	case "TRUNC":
		return r.rewriteTrunc(fc.Args, args), nil
	case "ROUND":
		return fmt.Sprintf("ROUND(%s)", strings.Join(args, ", ")), nil
	case "MOD":
		if len(args) != 2 {
			return "", semanticViolation(fc, "MOD requires exactly 2 arguments")
		}
		return fmt.Sprintf("MOD(%s, %s)", args[0], args[1]), nil
	case "ABS", "CEIL", "FLOOR", "SIGN", "POWER", "SQRT", "EXP", "LN":
		target := upper
		if upper == "CEIL" {
			target = "CEILING"
		}
		return fmt.Sprintf("%s(%s)", target, strings.Join(args, ", ")), nil
	case "GREATEST", "LEAST", "COALESCE":
		return fmt.Sprintf("%s(%s)", upper, strings.Join(args, ", ")), nil
	case "USER", "UID":
		return "CURRENT_USER", nil
	case "DBMS_OUTPUT.PUT_LINE":
		return fmt.Sprintf("RAISE NOTICE '%%', %s", args[0]), nil
	case "SYS_CONTEXT":
		return fmt.Sprintf("orapgsync_sys_context(%s)", strings.Join(args, ", ")), nil
	default:
		return r.userFunctionCall(fc)
	}
}

func rewriteDecode(args []string) string {
	if len(args) < 3 {
		return fmt.Sprintf("DECODE(%s)", strings.Join(args, ", "))
	}
	subject := args[0]
	var sb strings.Builder
	sb.WriteString("(CASE ")
	i := 1
	for ; i+1 < len(args); i += 2 {
		fmt.Fprintf(&sb, "WHEN %s = %s THEN %s ", subject, args[i], args[i+1])
	}
	if i < len(args) {
		fmt.Fprintf(&sb, "ELSE %s ", args[i])
	}
	sb.WriteString("END)")
	return sb.String()
}

func rewriteInstr(args []string) string {
	if len(args) == 2 {
		return fmt.Sprintf("POSITION(%s IN %s)", args[1], args[0])
	}
	return fmt.Sprintf("orapgsync_instr(%s)", strings.Join(args, ", "))
}

func rewriteToChar(args []string) string {
	if len(args) == 1 {
		return fmt.Sprintf("(%s)::text", args[0])
	}
	return fmt.Sprintf("TO_CHAR(%s)", strings.Join(args, ", "))
}

// rewriteTrunc applies §4.7's type-aware TRUNC rewrite: a date/timestamp
// argument truncates to day granularity via DATE_TRUNC, cast back to date
// since DATE_TRUNC always returns timestamp; a numeric argument keeps
// Oracle's own TRUNC semantics (PostgreSQL's TRUNC matches it exactly).
func (r *rewriter) rewriteTrunc(rawArgs []ast.Expression, args []string) string {
	if len(args) == 1 {
		if len(rawArgs) == 1 && r.ctx.IsDateLike(rawArgs[0]) {
			return fmt.Sprintf("DATE_TRUNC('day', %s)::date", args[0])
		}
		return fmt.Sprintf("TRUNC(%s)", args[0])
	}
	return fmt.Sprintf("date_trunc(%s, %s)", args[1], args[0])
}

// userFunctionCall qualifies an unmapped function name with the current
// schema when it isn't already schema-qualified, per §4.7's fallback rule.
func (r *rewriter) userFunctionCall(fc *ast.FunctionCall) (string, error) {
	args, err := r.exprList(fc.Args)
	if err != nil {
		return "", err
	}
	name, err := r.qualifyCallTarget(fc.Function)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
}

func (r *rewriter) qualifyCallTarget(target ast.Expression) (string, error) {
	switch v := target.(type) {
	case *ast.Identifier:
		return metadata.Canonicalize(r.ctx.Schema) + "." + metadata.Canonicalize(v.Value), nil
	case *ast.QualifiedIdentifier:
		return strings.ToLower(v.String()), nil
	default:
		return "", transformationBug(target, "unexpected call target expression")
	}
}
