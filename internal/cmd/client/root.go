package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the flake client with the
// id and config commands registered.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "flake",
		Short: "flake client commands",
	}
	Register(root, baseURL)
	return root
}

// Register adds the client commands to parent.
func Register(parent *cobra.Command, baseURL BaseURLFunc) {
	parent.AddCommand(
		NewNextCommand(baseURL),
		NewDecodeCommand(baseURL),
		NewInfoCommand(baseURL),
		NewConfigCommand(),
	)
}
