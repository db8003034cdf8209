package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/devserver"
	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

var (
	serveAddr string
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an in-memory note store for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer log.Sync()

		store := devserver.NewStore()
		if serveSeed {
			seed(store)
		}

		srv := devserver.New(store, log)
		log.Info("dev store listening", zap.String("addr", serveAddr))
		fmt.Printf("Note store at http://localhost%s/\n", serveAddr)
		return http.ListenAndServe(serveAddr, srv)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8787", "listen address")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "seed sample notes")
	rootCmd.AddCommand(serveCmd)
}

func seed(store *devserver.Store) {
	store.AddAgent("dev-user", "Dev User")

	samples := []note.RawMessage{
		{
			Title:     "Prairie burn recovery",
			BodyText:  "<p>Big bluestem already resprouting two weeks after the burn.</p>",
			Creator:   "dev-user",
			Latitude:  "38.6270",
			Longitude: "-90.1994",
			Published: true,
			Tags:      []string{"prairie", "fire-ecology"},
		},
		{
			Title:     "Creek turbidity after storm",
			BodyText:  "<p>Water running brown at the footbridge; photo attached.</p>",
			Creator:   "dev-user",
			Latitude:  "38.6362",
			Longitude: "-90.2336",
			Published: true,
			Tags:      []string{"hydrology"},
			Media: []note.RawMedia{
				{UUID: "seed-1", Type: "image", URI: "http://localhost:8787/objects/seed-1.jpg"},
			},
		},
		{
			Title:     "Private scratch note",
			BodyText:  "<p>Remember to recheck plot 14.</p>",
			Creator:   "dev-user",
			Latitude:  "38.6400",
			Longitude: "-90.2600",
			Published: false,
		},
	}
	for _, s := range samples {
		store.CreateMessage(s)
	}
}
