package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xyproto/vcon"
)

type settings struct {
	configFile string
	backend    string
	font       string
	beep       string
	verbose    bool
}

// opener creates the console the commands run on.
type opener func(s *settings, opts vcon.Options) (*vcon.Console, error)

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr, openConsole)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(stdout, stderr io.Writer, open opener) *cobra.Command {
	s := &settings{}

	// withConsole opens a console for the duration of fn
	withConsole := func(fn func(c *vcon.Console) error) error {
		opts, err := s.options()
		if err != nil {
			return err
		}
		c, err := open(s, opts)
		if err != nil {
			return err
		}
		defer c.Quit()
		if s.verbose {
			c.Logger = log.New(stderr, "vcon: ", log.LstdFlags)
		}
		c.Exit = func(int) {}
		err = fn(c)
		if errors.Is(err, vcon.ErrQuit) {
			return nil
		}
		return err
	}

	cmd := &cobra.Command{
		Use:           "vcon",
		Short:         "Interactive shell on a virtual text console",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConsole(runShell)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{Err: err}
	})

	cmd.PersistentFlags().StringVarP(&s.configFile, "config", "c", "", "TOML file with console options")
	cmd.PersistentFlags().StringVarP(&s.backend, "backend", "b", "screen", "backend to draw with: screen or terminal")
	cmd.PersistentFlags().StringVar(&s.font, "font", "", "font file")
	cmd.PersistentFlags().StringVar(&s.beep, "beep", "", "WAV file played by the beep command")
	cmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "Show the name of every key pressed, ESC twice to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConsole(runKeys)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "options",
		Short: "List the console option names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range vcon.OptionNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})
	return cmd
}

// options merges, from lowest to highest priority: the config file,
// VCON_* environment variables and the command line flags.
func (s *settings) options() (vcon.Options, error) {
	opts := vcon.Options{}
	if s.configFile != "" {
		fileOpts, err := vcon.LoadConfigFile(s.configFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(opts, fileOpts)
	}
	maps.Copy(opts, vcon.EnvOptions())
	if s.font != "" {
		opts["font"] = s.font
	}
	if s.beep != "" {
		opts["beep_sound"] = s.beep
	}
	// terminals draw with their own font
	if _, ok := opts["font"]; !ok {
		opts["font"] = "terminal"
	}
	return opts, nil
}

func openConsole(s *settings, opts vcon.Options) (*vcon.Console, error) {
	var b vcon.Backend
	switch s.backend {
	case "screen":
		b = vcon.NewScreenBackend(nil)
	case "terminal":
		b = vcon.NewTerminalBackend(nil)
	default:
		return nil, usageError{Err: fmt.Errorf("unknown backend %q", s.backend)}
	}
	return vcon.New(b, opts)
}

const shellHelp = "commands: clear, beep, size, colour <name>, reset, help, quit"

func runShell(c *vcon.Console) error {
	if err := c.WriteLine(shellHelp); err != nil {
		return err
	}
	for {
		line, err := c.ReadLine("> ")
		if err != nil {
			return err
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch cmd {
		case "quit", "exit":
			return nil
		case "clear":
			err = c.Clear()
		case "beep":
			if berr := c.Beep(); berr != nil {
				err = c.WriteLine(berr.Error())
			}
		case "size":
			cols, rows := c.Size()
			err = c.WriteLine(fmt.Sprintf("%dx%d", cols, rows))
		case "colour", "color":
			col, perr := vcon.ParseColour(arg)
			if perr != nil {
				err = c.WriteLine(perr.Error())
				break
			}
			c.SetForeground(col)
		case "reset":
			c.ResetColour()
		case "help":
			err = c.WriteLine(shellHelp)
		default:
			err = c.WriteLine(line)
		}
		if err != nil {
			return err
		}
	}
}

func runKeys(c *vcon.Console) error {
	escCount := 0
	for escCount < 2 {
		k, _, err := c.ReadKey(true)
		if err != nil {
			return err
		}
		if err := c.WriteLine(k.String()); err != nil {
			return err
		}
		if k.Key != vcon.KeyEscape {
			continue
		}
		if escCount == 0 {
			err = c.WriteLine("Press ESC again to exit")
		} else {
			err = c.WriteLine("bye!")
		}
		if err != nil {
			return err
		}
		escCount++
	}
	return nil
}
