package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fieldnotes-app/fieldnotes/internal/api"
	"github.com/fieldnotes-app/fieldnotes/internal/config"
	"github.com/fieldnotes-app/fieldnotes/internal/editor"
	"github.com/fieldnotes-app/fieldnotes/internal/explore"
	"github.com/fieldnotes-app/fieldnotes/internal/identity"
	"github.com/fieldnotes-app/fieldnotes/internal/library"
	"github.com/fieldnotes-app/fieldnotes/internal/media"
	"github.com/fieldnotes-app/fieldnotes/internal/prefs"
	"github.com/fieldnotes-app/fieldnotes/internal/ui"
)

var (
	configPath string
	debugLog   string
)

var rootCmd = &cobra.Command{
	Use:   "fieldnotes",
	Short: "Field notes over a shared map and library",
	Long: `fieldnotes browses, searches and edits field notes stored in a
shared remote library: your own private notes and everyone's
published, geolocated ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "path to config.yml")
	rootCmd.Flags().StringVar(&debugLog, "debug-log", "", "write debug logs to this file")
}

func runTUI() error {
	if !config.ConfigExists(configPath) {
		if err := firstTimeSetup(configPath); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is not configured; edit %s", configPath)
	}

	log, err := buildLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return err
	}
	defer store.Close()

	pref, err := store.Load()
	if err != nil {
		log.Warn("failed to load prefs, using defaults", zap.Error(err))
	}

	ident := identity.NewService(cfg.Firebase.Project, cfg.Firebase.APIKey, log)
	client := api.NewClient(cfg.APIBaseURL, ident, log)

	if err := restoreSession(cfg, ident, client); err != nil {
		// Not fatal: browse anonymously.
		fmt.Fprintf(os.Stderr, "Session: %v (browsing anonymously)\n", err)
	}

	lib := library.NewController(client, ident.UserID(), log)
	exp := explore.NewController(client, ident.UserID(), log)
	ed := editor.New(client, media.NewUploader(cfg.S3ProxyPrefix), log)

	applyLocation(exp)

	m := ui.NewModel(ui.Deps{
		API:      client,
		Library:  lib,
		Explore:  exp,
		Editor:   ed,
		Identity: ident,
		Prefs:    store,
		Log:      log,
	}, pref)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func buildLogger() (*zap.Logger, error) {
	if debugLog == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{debugLog}
	zcfg.ErrorOutputPaths = []string{debugLog}
	return zcfg.Build()
}

// applyLocation reads the device position from FIELDNOTES_LOCATION
// ("lat,lng"). A terminal has no location permission dialog; an unset
// or malformed value is the denial case.
func applyLocation(exp *explore.Controller) {
	raw := os.Getenv("FIELDNOTES_LOCATION")
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		exp.DenyLocation()
		return
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		exp.DenyLocation()
		return
	}
	exp.SetLocation(lat, lng)
}

// restoreSession unseals the stored uid and signs the user in,
// enriching the profile from the backend when it answers.
func restoreSession(cfg *config.Config, ident *identity.Service, client *api.Client) error {
	if cfg.SessionPath == "" {
		return fmt.Errorf("no session configured")
	}

	salt, err := cfg.GetSalt()
	if err != nil {
		return err
	}
	if salt == nil {
		salt, err = identity.GenerateSalt()
		if err != nil {
			return err
		}
		cfg.SetSalt(salt)
		if err := cfg.Save(configPath); err != nil {
			return err
		}
	}

	passphrase, err := promptPassphrase()
	if err != nil {
		return err
	}

	uid, err := identity.NewSessionStore(cfg.SessionPath).Load(passphrase, salt)
	if err != nil {
		return err
	}
	if uid == "" {
		return fmt.Errorf("no stored session")
	}

	profile := api.UserProfile{UID: uid}
	if fetched := client.FetchUserData(context.Background(), uid); fetched != nil {
		profile = *fetched
		profile.UID = uid
	}
	ident.SignIn(profile)
	return nil
}

func promptPassphrase() (string, error) {
	fmt.Print("Passphrase: ")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(passphrase)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	passphrase, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(passphrase), nil
}

func firstTimeSetup(path string) error {
	fmt.Println("  Welcome to fieldnotes!")
	fmt.Println()
	fmt.Print("  Note store URL (e.g. http://localhost:8787/): ")

	reader := bufio.NewReader(os.Stdin)
	baseURL, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	cfg := &config.Config{
		APIBaseURL: strings.TrimSpace(baseURL),
		PrefsPath:  config.DefaultPrefsPath(),
		Theme:      "dark",
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Configuration created. Edit %s to customize.\n", path)
	fmt.Println()
	return nil
}
