package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wallpaperd/internal/adapter/input"
)

var sendOpts struct {
	file string
}

var sendCmd = &cobra.Command{
	Use:   "send [COMMAND...]",
	Short: "Send raw protocol commands",
	Long: `Send a raw command line to the daemon and print its response.

With --file, commands are read one per line from a file ("-" for stdin).
Blank lines and lines starting with '#' are ignored. Every line is checked
before the first one is sent.

Examples:
  wpctl send get wallpaper
  wpctl send --file commands.txt
  printf 'mode linear\ninterval 120\n' | wpctl send --file -`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.file, "file", "f", "",
		"Read commands from file (- for stdin)")
}

func runSend(cmd *cobra.Command, args []string) error {
	var commands []string
	switch {
	case sendOpts.file != "" && len(args) > 0:
		return errors.New("pass either a command or --file, not both")
	case sendOpts.file != "":
		src, err := input.NewSource(sendOpts.file)
		if err != nil {
			return err
		}
		commands, err = src.Commands(cmd.Context())
		if err != nil {
			return err
		}
		logger.Debug("loaded commands", "source", src.Name(), "count", len(commands))
	case len(args) > 0:
		commands = []string{strings.Join(args, " ")}
	default:
		return errors.New("no command given")
	}

	c := newClient()
	for _, text := range commands {
		resp, err := c.Send(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("%s: %w", text, err)
		}
		if resp != "" {
			fmt.Println(resp)
		}
	}
	return nil
}
