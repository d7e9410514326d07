package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Show security settings, or purge memories past retention",
		Run:   runSecurity,
	}
	cmd.Flags().Bool("purge-expired", false, "Delete memories older than the retention window")

	RootCmd.AddCommand(cmd)
}

func runSecurity(cmd *cobra.Command, args []string) {
	purge, _ := cmd.Flags().GetBool("purge-expired")

	sec, s := openSecure()
	defer s.Close()

	if purge {
		removed, err := sec.PurgeExpired(cmd.Context())
		if err != nil {
			exitErr("security", err)
		}
		b, _ := json.Marshal(map[string]int{"removed": removed})
		fmt.Println(string(b))
		return
	}

	b, _ := json.MarshalIndent(sec.Status(), "", "  ")
	fmt.Println(string(b))
}
