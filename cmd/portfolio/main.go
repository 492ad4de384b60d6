package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Personal portfolio site backed by a cached document-store mirror",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(loginCmd())
	root.AddCommand(uploadCmd())

	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the public website and admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func syncCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local cache from the document store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "resync even if the cache is fresh")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "export {testers|subscribers}",
		Short:     "Export signups as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"testers", "subscribers"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), args[0], out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an admin API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	return cmd
}

func uploadCmd() *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or APK via a presigned URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), args[0], contentType)
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type of the file (default: detected from extension)")
	return cmd
}
