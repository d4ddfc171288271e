package cmd

import (
	"fmt"
	"iserv-client/cmd/iserv/globals"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/internal/components/files"
	"iserv-client/pkg/iserv"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	filesRecursive *bool
	filesOut       *string
	filesOverwrite *bool
)

func init() {
	filesRecursive = filesLsCmd.Flags().BoolP("recursive", "r", false, "List subdirectories too.")
	filesOut = filesGetCmd.Flags().StringP("out", "o", "", "Local path to write to, the file's name in the working directory if empty.")
	filesOverwrite = filesMvCmd.Flags().Bool("overwrite", false, "Replace the destination if it exists.")

	filesCmd.AddCommand(filesLsCmd)
	filesCmd.AddCommand(filesGetCmd)
	filesCmd.AddCommand(filesPutCmd)
	filesCmd.AddCommand(filesMkdirCmd)
	filesCmd.AddCommand(filesRmCmd)
	filesCmd.AddCommand(filesMvCmd)
	rootCmd.AddCommand(filesCmd)
}

func newStorage(cmd *cobra.Command) *files.Storage {
	cfg := globals.Get(cmd.Context()).Config
	client := newClient(cmd)
	storage, err := client.Files(iserv.FilesOptions{
		Host: cfg.Webdav.Host,
		Root: cfg.Webdav.Root,
	})
	if err != nil {
		utils.Fatal("failed to open file storage", err)
	}
	return storage
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "The 'files' subcommand works with the account's WebDAV file storage.",
}

var filesLsCmd = &cobra.Command{
	Use:   "ls [dir] [-r]",
	Short: "Lists a directory.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "/"
		if len(args) > 0 {
			dir = args[0]
		}

		storage := newStorage(cmd)
		entries, err := storage.ReadDir(cmd.Context(), dir, *filesRecursive)
		if err != nil {
			utils.Fatal("failed to list directory", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Path", "Size", "Modified", "Type"})
		for _, e := range entries {
			size := utils.FormatSize(e.Size)
			kind := e.MIMEType
			if e.IsDir {
				size = ""
				kind = "directory"
			}
			t.AppendRow(table.Row{e.Path, size, e.ModTime.Format(time.DateTime), kind})
		}
		t.Render()
	},
}

var filesGetCmd = &cobra.Command{
	Use:   "get <remote> [-o <local>]",
	Short: "Downloads a file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := *filesOut
		if out == "" {
			out = path.Base(args[0])
		}

		storage := newStorage(cmd)
		f, err := os.Create(out)
		if err != nil {
			utils.Fatal("failed to create local file", err)
		}
		defer f.Close()

		n, err := storage.Download(cmd.Context(), args[0], f)
		if err != nil {
			os.Remove(out)
			utils.Fatal("failed to download", err)
		}
		fmt.Printf("%s -> %s (%s)\n", args[0], out, utils.FormatSize(n))
	},
}

var filesPutCmd = &cobra.Command{
	Use:   "put <local> [remote]",
	Short: "Uploads a file, to the root directory if no remote path is given.",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		remote := "/" + filepath.Base(args[0])
		if len(args) > 1 {
			remote = args[1]
		}

		f, err := os.Open(args[0])
		if err != nil {
			utils.Fatal("failed to open local file", err)
		}
		defer f.Close()

		storage := newStorage(cmd)
		err = storage.Upload(cmd.Context(), remote, f)
		if err != nil {
			utils.Fatal("failed to upload", err)
		}
		fmt.Printf("%s -> %s\n", args[0], remote)
	},
}

var filesMkdirCmd = &cobra.Command{
	Use:   "mkdir <dir>",
	Short: "Creates a directory.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		storage := newStorage(cmd)
		err := storage.Mkdir(cmd.Context(), args[0])
		if err != nil {
			utils.Fatal("failed to create directory", err)
		}
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Removes files or directories with their contents.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		storage := newStorage(cmd)
		for _, name := range args {
			err := storage.Remove(cmd.Context(), name)
			if err != nil {
				utils.Fatal(fmt.Sprintf("failed to remove %s", name), err)
			}
		}
	},
}

var filesMvCmd = &cobra.Command{
	Use:   "mv <from> <to> [--overwrite]",
	Short: "Moves or renames a file or directory.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		storage := newStorage(cmd)
		err := storage.Move(cmd.Context(), args[0], args[1], *filesOverwrite)
		if err != nil {
			utils.Fatal("failed to move", err)
		}
	},
}
