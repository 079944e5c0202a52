package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/locale"
	"github.com/harrisonrobin/ptt/pkg/model"
	"github.com/harrisonrobin/ptt/pkg/store"
)

// printTasks writes the ledger as a table. Row 0 is marked active.
func printTasks(w io.Writer, tasks []model.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTARTED\tDURATION\tDESCRIPTION")
	for i, t := range tasks {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s%d\t%s\t%s\t%s\n",
			marker, i,
			t.StartedAt.Format(store.StartedOnLayout),
			t.Duration.Format(duration.FormatHHMM),
			strings.ReplaceAll(t.Description, "\n", " "))
	}
	tw.Flush()
}

// confirm asks question and reads the answer from in. Only an explicit yes,
// in either language, confirms.
func confirm(in *bufio.Reader, out io.Writer, msgs locale.Messages, question string) bool {
	fmt.Fprintf(out, "%s [%s/%s] ", question, msgs.Yes, strings.ToUpper(msgs.No))
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return isYes(msgs, line)
}

func isYes(msgs locale.Messages, answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case msgs.Yes, "y", "yes", "o", "oui":
		return true
	}
	return false
}

func parseRows(args []string) ([]int, error) {
	rows := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid row %q", arg)
		}
		rows = append(rows, n)
	}
	return rows, nil
}
