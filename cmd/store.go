package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"Bt1QRadio/config"
	"Bt1QRadio/store"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Check the document store connection",
	Long:  `Connects to the configured document store and performs a write/read/delete round-trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Checking document store at %s:%s (db %d)...\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		st, err := store.NewRedisStore(cfg)
		if err != nil {
			log.Fatalf("connect failed: %v", err)
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := st.Check(ctx); err != nil {
			log.Fatalf("check failed: %v", err)
		}
		fmt.Println("Document store OK.")
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
