package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addTransportFlag(cmd *cobra.Command) {
	cmd.Flags().String("transport", "grpc", "Transport: grpc|http")
}

// NewNextCommand constructs the `next` command.
func NewNextCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Issue one or more ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, _ := cmd.Flags().GetInt("count")
			format, _ := cmd.Flags().GetString("format")
			asJSON, _ := cmd.Flags().GetBool("json")
			name, _ := cmd.Flags().GetString("transport")
			if count < 1 {
				return fmt.Errorf("--count must be >= 1")
			}

			tr, err := getTransport(name, baseURL)
			if err != nil {
				return err
			}
			resp, err := tr.Next(cmd.Context(), count, format)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			for _, id := range resp.Ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().Int("count", 1, "Number of ids to issue")
	cmd.Flags().String("format", "", "Encoding: decimal|base2|base32|base36|base58|base64 (default decimal)")
	cmd.Flags().Bool("json", false, "Print the full response as JSON")
	addTransportFlag(cmd)
	return cmd
}

// NewDecodeCommand constructs the `decode ID` command.
func NewDecodeCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode ID",
		Short: "Split an id into timestamp, data center, machine and sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			name, _ := cmd.Flags().GetString("transport")
			tr, err := getTransport(name, baseURL)
			if err != nil {
				return err
			}
			resp, err := tr.Decode(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().String("format", "", "Encoding of ID (default decimal)")
	addTransportFlag(cmd)
	return cmd
}

// NewInfoCommand constructs the `info` command.
func NewInfoCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the node's epoch, layout and worker ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("transport")
			tr, err := getTransport(name, baseURL)
			if err != nil {
				return err
			}
			resp, err := tr.Info(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	addTransportFlag(cmd)
	return cmd
}
