// Command questionnaire chạy survey sau mua hàng trên terminal, dùng cùng API
// proxy mà extension checkout gọi.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/checkout-survey/config"
	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/questionnaire"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	var (
		apiURL = flag.String("api", cfg.SurveyAPIURL, "base URL của survey API")
		title  = flag.String("title", "", "tiêu đề survey cần hiển thị")
		locale = flag.String("locale", "", "locale của người mua (vd: en, fr-CA)")
		shop   = flag.String("shop", "", "shop domain")
		email  = flag.String("email", "", "email người mua")
		order  = flag.String("order", "", "order id")
	)
	flag.Parse()

	if *order == "" || *title == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := questionnaire.NewClient(*apiURL, nil)
	surveys, err := client.FetchSurveys(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Không tải được danh sách survey")
	}
	survey := questionnaire.Select(surveys, questionnaire.Selector{Title: *title, Locale: *locale})
	if survey == nil {
		logger.WithFields(logrus.Fields{"title": *title, "locale": *locale}).Warn("Không có survey phù hợp")
	}

	persister := questionnaire.NewAsyncPersister(client, 10*time.Second)
	m := questionnaire.New(survey, questionnaire.Meta{
		ShopDomain: *shop,
		Email:      *email,
		OrderID:    *order,
	}, persister)

	runErr := questionnaire.RunTerminal(ctx, m, os.Stdin, os.Stdout)
	persister.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.WithError(runErr).Fatal("questionnaire dừng bất thường")
	}
}
