package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nosuji/portfolio/internal/config"
	"github.com/nosuji/portfolio/internal/contact"
	"github.com/nosuji/portfolio/internal/content"
	"github.com/nosuji/portfolio/internal/mailer"
	"github.com/nosuji/portfolio/internal/store"
	"github.com/nosuji/portfolio/internal/tui"
	"github.com/nosuji/portfolio/internal/typewriter"
)

var envFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Personal portfolio site",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.AddCommand(serveCmd(), previewCmd(), sendCmd())
	return root
}

func loadAll() (*config.Config, *content.Site, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	site, err := content.Load(cfg.ContentFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.ToEmail == "" {
		cfg.ToEmail = site.ContactEmail
	}
	return cfg, site, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, site, err := loadAll()
			if err != nil {
				return err
			}
			gin.SetMode(cfg.GinMode)

			sender, err := mailer.New(cfg.Mail)
			if err != nil {
				// The page still works; every submission ends in the error state.
				log.Printf("warning: contact email disabled: %v", err)
				mailErr := err
				sender = mailer.SenderFunc(func(context.Context, mailer.Message) error { return mailErr })
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			s := newServer(cfg, site, st, sender)
			stop := s.startMaintenance()
			defer stop()
			defer s.contacts.Close()

			srv := &http.Server{
				Addr:    ":" + cfg.Port,
				Handler: s.routes(),
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			errc := make(chan error, 1)
			go func() {
				log.Printf("Listening on :%s", cfg.Port)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Println("Shutting down")
			shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Play the hero typewriter animation in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, site, err := loadAll()
			if err != nil {
				return err
			}
			return tui.Preview(site.Owner, site.Roles,
				typewriter.WithInterval(cfg.TypewriterInterval),
				typewriter.WithPause(cfg.TypewriterPause),
			)
		},
	}
}

func sendCmd() *cobra.Command {
	var form contact.Form
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message through the contact form pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadAll()
			if err != nil {
				return err
			}
			sender, err := mailer.New(cfg.Mail)
			if err != nil {
				return err
			}
			c := contact.NewController(contact.Config{ToEmail: cfg.ToEmail, ResetAfter: cfg.ContactResetAfter}, sender)
			defer c.Close()

			st, err := tui.Send(cmd.Context(), c, form)
			if err != nil {
				return err
			}
			if st.Kind != contact.Success {
				return fmt.Errorf("%s", st.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVar(&form.Email, "email", "", "your email address")
	cmd.Flags().StringVar(&form.Message, "message", "", "message text")
	return cmd
}
