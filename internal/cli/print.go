package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"catalog-service/internal/domain"
	"catalog-service/internal/service"
	resp "catalog-service/internal/transport/http/response"
)

// printResult json 模式输出与 HTTP 相同的信封；human 模式按数据类型简要打印
func printResult(cmd *cobra.Command, format string, data any) error {
	w := cmd.OutOrStdout()
	if format == FormatJSON {
		return writeJSON(w, resp.OK(data))
	}
	switch v := data.(type) {
	case *domain.Category:
		printCategory(w, *v)
	case []domain.Category:
		for _, c := range v {
			printCategory(w, c)
		}
	case domain.Page[domain.Category]:
		for _, c := range v.Data {
			printCategory(w, c)
		}
		fmt.Fprintf(w, "page %d/%d, %d total\n", v.Page, v.TotalPages, v.Total)
	case []domain.TreeNode:
		printTree(w, v, 0)
	case service.ValidationResult:
		if v.Valid {
			fmt.Fprintln(w, "valid")
		}
		for _, e := range v.Errors {
			fmt.Fprintln(w, "- "+e)
		}
	default:
		fmt.Fprintln(w, v)
	}
	return nil
}

// printError 输出错误信封，并把错误交回 cobra 使进程以非零退出
func printError(cmd *cobra.Command, format string, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		return err
	}
	if format == FormatJSON {
		_ = writeJSON(cmd.OutOrStdout(), resp.ErrorWithData(se.HTTPStatus(), se.PublicMessage(), se.Details()))
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", se.Code, se.PublicMessage())
		for _, r := range se.Reasons {
			fmt.Fprintln(cmd.ErrOrStderr(), "- "+r)
		}
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCategory(w io.Writer, c domain.Category) {
	state := ""
	if !c.IsActive {
		state = " (inactive)"
	}
	fmt.Fprintf(w, "%s  L%d  %s  %q%s\n", c.ID, c.Level, c.Path, c.Name, state)
}

func printTree(w io.Writer, nodes []domain.TreeNode, depth int) {
	for _, n := range nodes {
		state := ""
		if !n.IsActive {
			state = " (inactive)"
		}
		fmt.Fprintf(w, "%s%s [%s]%s\n", strings.Repeat("  ", depth), n.Name, n.Path, state)
		printTree(w, n.Children, depth+1)
	}
}
