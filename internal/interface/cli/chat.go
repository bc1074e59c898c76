package cli

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ajay03299/DevForge/internal/application/dto"
)

const chatPrompt = "devforge> "

// healthChecker is implemented by backends that can probe their server
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// mentionPattern matches @path mentions whose extension has a language profile
func mentionPattern(extensions []string) *regexp.Regexp {
	quoted := make([]string, len(extensions))
	for i, ext := range extensions {
		quoted[i] = regexp.QuoteMeta(strings.TrimPrefix(ext, "."))
	}
	return regexp.MustCompile(`@([\w./\\-]+\.(?:` + strings.Join(quoted, "|") + `))\b`)
}

// findMention returns the first mentioned file of line
func findMention(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func newChatCmd(env *cmdEnv) *cobra.Command {
	var maxAttempts int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive loop: mention a file with @path and describe what it should do",
		Long: `Read requests line by line. A line that mentions a file, such as
"@avg.py should print 5", starts a repair session on that file with the whole
line as intent. Type exit or quit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			container, err := env.container(ctx)
			if err != nil {
				return err
			}
			defer container.Close()

			re := mentionPattern(container.Profiles().Extensions())
			gateway := container.Gateway()
			fmt.Fprintf(env.out, "devforge chat using %s. Mention a file with @path, type exit to quit.\n", gateway.Name())
			if hc, ok := gateway.(healthChecker); ok {
				if err := hc.HealthCheck(ctx); err != nil {
					fmt.Fprintf(env.out, "Warning: %v\n", err)
				}
			}

			scanner := bufio.NewScanner(env.in)
			for {
				fmt.Fprint(env.out, chatPrompt)
				if !scanner.Scan() {
					fmt.Fprintln(env.out)
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				switch strings.ToLower(line) {
				case "":
					continue
				case "exit", "quit":
					return nil
				}

				path, ok := findMention(re, line)
				if !ok {
					fmt.Fprintf(env.out, "No file mentioned. Use @path with one of: %s\n",
						strings.Join(container.Profiles().Extensions(), ", "))
					continue
				}

				// A failed session is already reported; the loop goes on
				_ = runRepair(ctx, container, env.presenter(false), dto.RunRepairInput{
					FilePath:    filepath.Clean(path),
					Intent:      line,
					MaxAttempts: maxAttempts,
				})
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Execution budget per request (default: max_attempts setting)")
	return cmd
}
