package cmd

import (
	"bufio"
	"fmt"
	"iserv-client/cmd/iserv/globals"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/internal/components/credential"
	"iserv-client/pkg/iserv"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	loginSave          *bool
	loginPasswordStdin *bool
)

func init() {
	loginSave = loginCmd.Flags().Bool("save", false, "Save the password in the OS keyring after a successful login.")
	loginPasswordStdin = loginCmd.Flags().Bool("password-stdin", false, "Read the password from the first line of stdin.")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func readPasswordLine() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var loginCmd = &cobra.Command{
	Use:   "login [--save] [--password-stdin]",
	Short: "Logs in and prints the session identifiers, optionally saving the password.",
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())
		cfg := value.Config

		pass := cfg.Password
		if *loginPasswordStdin {
			var err error
			pass, err = readPasswordLine()
			if err != nil {
				utils.Fatal("failed to read password from stdin", err)
			}
		}
		if pass == "" {
			pass = password(cfg)
		}

		client, err := iserv.NewClient(cmd.Context(), clientOptions(cfg, pass), value.Tel)
		if err != nil {
			utils.Fatal("failed to login", err)
		}
		defer client.Close()

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Cookie", "Value"})
		t.AppendRows([]table.Row{
			{"IServSAT", client.Session.SAT},
			{"IServSATId", client.Session.SATId},
			{"IServSession", client.Session.Session},
		})
		t.Render()

		if *loginSave {
			store := openCredentials(cfg)
			err = store.Set(credential.Key(cfg.Username, cfg.Host), pass)
			if err != nil {
				utils.Fatal("failed to save password", err)
			}
			fmt.Printf("saved password for %s\n", credential.Key(cfg.Username, cfg.Host))
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Removes the password saved by 'login --save'.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := globals.Get(cmd.Context()).Config
		store := openCredentials(cfg)
		err := store.Delete(credential.Key(cfg.Username, cfg.Host))
		if err != nil {
			utils.Fatal("failed to remove password", err)
		}
		fmt.Printf("removed password for %s\n", credential.Key(cfg.Username, cfg.Host))
	},
}
