package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/metalagman/paradox/internal/server"
	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one sentence and print the JSON reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			endpoint := server.New(server.Config{LoadConfig: loadConfig})

			query := url.Values{}
			if prompt != "" {
				query.Set("prompt", prompt)
			}
			reply := endpoint.Respond(cmd.Context(), query)

			out, err := json.Marshal(reply.Body)
			if err != nil {
				return fmt.Errorf("marshal reply: %w", err)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
				return err
			}
			if reply.Status != http.StatusOK {
				return fmt.Errorf("generate failed with status %d", reply.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt overriding the default instruction")
	return cmd
}
