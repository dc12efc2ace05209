package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/scalien/sdbp-go/pkg/client"
	"github.com/scalien/sdbp-go/pkg/common/log"
	"github.com/scalien/sdbp-go/pkg/memstore"
)

const (
	localF     = "local"
	localUsage = "Run against an in-process store instead of a remote shard."

	localEndpoint = "local"
)

var errExit = errors.New("exit")

// Command completer for readline
var completer = readline.NewPrefixCompleter(
	readline.PcItem(".help"),
	readline.PcItem(".exit"),
	readline.PcItem("USE"),
	readline.PcItem("PUT"),
	readline.PcItem("KEYS"),
	readline.PcItem("KV"),
	readline.PcItem("RANGE"),
	readline.PcItem("REVERSE"),
)

const helpText = `
Commands:
  .help                   - Show this help message
  .exit                   - Exit the shell

  USE table               - Select the table the other commands work on
  PUT key value           - Store a key-value pair
  KEYS [prefix]           - List keys, optionally restricted to a prefix
  KV [prefix] [count]     - List key-value pairs, at most count of them
  RANGE start end         - List key-value pairs in [start, end)
  REVERSE start [count]   - List key-value pairs backwards from start
`

func newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell for browsing tables page by page.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var store *memstore.Store
			if local, _ := cmd.Flags().GetBool(localF); local {
				store = memstore.New()
				memstore.Register(localEndpoint, store)
				defer memstore.Unregister(localEndpoint)
				cfg.Transport = memstore.TransportName
				cfg.Endpoint = localEndpoint
			}

			c, err := client.NewClient(client.OptionsFromConfig(cfg))
			if err != nil {
				return err
			}
			if err := c.Connect(cmd.Context()); err != nil {
				return err
			}
			defer c.Close()

			sh := NewShell(c, cmd.OutOrStdout())
			sh.store = store
			return sh.Run(cmd.Context(), cfg.Endpoint)
		},
	}
	cmd.Flags().Bool(localF, false, localUsage)
	return cmd
}

// Shell executes shell commands against one client
type Shell struct {
	client *client.Client
	out    io.Writer
	logger log.Logger

	table     *client.Table
	tableName string

	// store is set in local mode so USE can create tables
	store *memstore.Store
}

// NewShell creates a shell writing its output to out
func NewShell(c *client.Client, out io.Writer) *Shell {
	return &Shell{
		client: c,
		out:    out,
		logger: log.GetDefaultLogger().WithField("component", "shell"),
	}
}

func (s *Shell) prompt(endpoint string) string {
	if s.tableName != "" {
		return fmt.Sprintf("sdbp:%s/%s> ", endpoint, s.tableName)
	}
	return fmt.Sprintf("sdbp:%s> ", endpoint)
}

// Run reads commands until .exit, EOF or ctx is done
func (s *Shell) Run(ctx context.Context, endpoint string) error {
	fmt.Fprintln(s.out, "Enter .help for usage hints.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(endpoint),
		HistoryFile:     filepath.Join(os.TempDir(), ".sdbp_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
		Stdout:          s.out,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	for ctx.Err() == nil {
		rl.SetPrompt(s.prompt(endpoint))

		line, readErr := rl.Readline()
		if readErr != nil {
			if errors.Is(readErr, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			}
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}

		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(s.out, "Error: %s\n", err)
		}
	}
	return nil
}

// Execute runs a single command line
func (s *Shell) Execute(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToUpper(parts[0])
	args := parts[1:]

	switch cmd {
	case ".HELP":
		fmt.Fprint(s.out, helpText)
		return nil
	case ".EXIT":
		return errExit
	case "USE":
		if len(args) != 1 {
			return errors.New("usage: USE table")
		}
		return s.use(ctx, args[0])
	}

	if s.table == nil {
		return errors.New("no table selected, run USE first")
	}

	switch cmd {
	case "PUT":
		if len(args) < 2 {
			return errors.New("usage: PUT key value")
		}
		if err := s.client.Set(ctx, s.table.ID(), args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "OK")
		return nil

	case "KEYS":
		params := client.DefaultRangeParams()
		if len(args) > 0 {
			params.Prefix = args[0]
		}
		return s.printKeys(ctx, params)

	case "KV":
		params := client.DefaultRangeParams()
		if len(args) > 0 {
			params.Prefix = args[0]
		}
		if len(args) > 1 {
			count, err := parseCount(args[1])
			if err != nil {
				return err
			}
			params.Count = count
		}
		return s.printKeyValues(ctx, params)

	case "RANGE":
		if len(args) != 2 {
			return errors.New("usage: RANGE start end")
		}
		params := client.DefaultRangeParams()
		params.StartKey = args[0]
		params.EndKey = args[1]
		return s.printKeyValues(ctx, params)

	case "REVERSE":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: REVERSE start [count]")
		}
		params := client.DefaultRangeParams()
		params.StartKey = args[0]
		params.Forward = false
		if len(args) == 2 {
			count, err := parseCount(args[1])
			if err != nil {
				return err
			}
			params.Count = count
		}
		return s.printKeyValues(ctx, params)

	default:
		return fmt.Errorf("unknown command %q, enter .help for usage hints", parts[0])
	}
}

func parseCount(arg string) (int, error) {
	count, err := strconv.Atoi(arg)
	if err != nil || count < 0 {
		return 0, fmt.Errorf("invalid count %q", arg)
	}
	return count, nil
}

func (s *Shell) use(ctx context.Context, name string) error {
	if s.store != nil {
		s.store.CreateTable(name)
	}
	table, err := s.client.Table(ctx, name)
	if err != nil {
		return err
	}
	s.table = table
	s.tableName = name
	fmt.Fprintf(s.out, "Using table %s (id %d)\n", name, table.ID())
	return nil
}

func (s *Shell) printKeys(ctx context.Context, params client.RangeParams) error {
	it, err := s.table.Keys(ctx, params)
	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(s.out)
	tw.SetHeader([]string{"Key"})
	n := 0
	for it.HasNext(ctx) {
		tw.Append([]string{it.Next()})
		n++
	}
	if err := it.Err(); err != nil {
		return err
	}
	tw.Render()
	fmt.Fprintf(s.out, "%d keys\n", n)
	return nil
}

func (s *Shell) printKeyValues(ctx context.Context, params client.RangeParams) error {
	it, err := s.table.KeyValues(ctx, params)
	if err != nil {
		return err
	}

	tw := tablewriter.NewWriter(s.out)
	tw.SetHeader([]string{"Key", "Value"})
	n := 0
	for it.HasNext(ctx) {
		kv := it.Next()
		tw.Append([]string{kv.Key, kv.Value})
		n++
	}
	if err := it.Err(); err != nil {
		return err
	}
	tw.Render()
	fmt.Fprintf(s.out, "%d entries\n", n)
	return nil
}
