// Package main implements brainctl, a CLI for manual use against a running
// brainlib gateway.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}

	root := &cobra.Command{
		Use:   "brainctl",
		Short: "CLI for brainlib gateway operations",
		Long: `brainctl is a command-line interface for a running brainlib gateway.
It creates vector stores, uploads documents, asks questions and reports
ingestion status. Every command prints the gateway's JSON reply.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.serverURL, "server", "http://localhost:8000", "brainlib server URL")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "request timeout")

	root.AddCommand(
		newCreateCmd(c),
		newUploadCmd(c),
		newAskCmd(c),
		newStatusCmd(c),
		newHealthCmd(c),
	)
	return root
}

func newCreateCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a vector store",
		Long: `Create a vector store. Without a name the gateway's default is used.

Examples:
  brainctl create
  brainctl create practice_kb`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]string{}
			if len(args) == 1 {
				fields["name"] = args[0]
			}
			return c.postForm(cmd, "/vector-stores", fields)
		},
	}
}

func newUploadCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <vector_store_id> <file>",
		Short: "Upload a document and attach it to a vector store",
		Long: `Upload a document and attach it to a vector store.

Examples:
  brainctl upload vs_abc123 notes.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.postFile(cmd, "/files", args[0], args[1])
		},
	}
}

func newAskCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <vector_store_id> <question...>",
		Short: "Ask a question answered from a vector store",
		Long: `Ask a question answered from the documents in a vector store.
Remaining arguments are joined into the question.

Examples:
  brainctl ask vs_abc123 What are the key takeaways?`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.postForm(cmd, "/ask", map[string]string{
				"vector_store_id": args[0],
				"question":        strings.Join(args[1:], " "),
			})
		},
	}
}

func newStatusCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "status <vector_store_id>",
		Short: "List the files in a vector store with their ingestion status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.postForm(cmd, "/status", map[string]string{"vector_store_id": args[0]})
		},
	}
}

func newHealthCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check brainlib server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.get(cmd, "/health")
		},
	}
}
