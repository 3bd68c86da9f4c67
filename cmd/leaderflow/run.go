package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/api"
	"github.com/tazhate/leaderflow/internal/bot"
	"github.com/tazhate/leaderflow/internal/notify"
	"github.com/tazhate/leaderflow/internal/session"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Log in, start the reminder scheduler and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.login()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			composer, err := notify.NewComposer()
			if err != nil {
				return err
			}
			sink, botAPI := a.newSink()

			sess, err := session.Open(ctx, *user, session.Deps{
				Entities: a.entities,
				Settings: a.settings,
				Calendar: a.calendar,
				Composer: composer,
				Sink:     sink,
				Logger:   a.logger,
				Location: a.cfg.Timezone,
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			if botAPI != nil {
				tgBot := bot.New(botAPI, a.cfg.Notify.TelegramChatID, sess, a.logger)
				u := tgbotapi.NewUpdate(0)
				u.Timeout = 30
				go tgBot.Run(ctx, botAPI.GetUpdatesChan(u))
				defer botAPI.StopReceivingUpdates()
			}

			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}
			router := api.NewRouter(api.NewHandler(sess, a.users, a.now), a.logger)
			server := &http.Server{
				Addr:              ":" + a.cfg.ServerPort,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				a.logger.Info("starting server", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("http server error", zap.Error(err))
					stop()
				}
			}()

			a.logger.Info("leaderflow started",
				zap.String("user", user.Username),
				zap.String("permission", string(sess.Permission())),
				zap.String("scheduler", string(sess.SchedulerState())),
			)
			<-ctx.Done()
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("error stopping http server", zap.Error(err))
			}
			return nil
		},
	}
}
