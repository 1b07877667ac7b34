package cli

import (
	"becoming_backend/internal/app"
	"becoming_backend/internal/notify"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var tickAt string

func init() {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one dispatcher tick synchronously and print the report",
		Long:  "Runs the due-user query, generation and delivery for a single minute. Slots already claimed are skipped.",
		Run:   runTick,
	}
	cmd.Flags().StringVar(&tickAt, "at", "", "time of the tick in RFC3339 (default: now)")

	RootCmd.AddCommand(cmd)
}

func runTick(cmd *cobra.Command, args []string) {
	now, err := parseTickTime(tickAt, time.Now())
	if err != nil {
		exitErr("parse --at", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}

	application, err := app.NewApp(cfg, configDir)
	if err != nil {
		exitErr("init", err)
	}

	report := application.Dispatcher.Tick(cmd.Context(), now)
	// os.Exit 不执行 defer，先关闭再退出
	application.Close(cmd.Context())

	if err := writeReport(os.Stdout, report); err != nil {
		exitErr("tick", err)
	}
}

// parseTickTime 空值表示当前时间
func parseTickTime(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	return time.Parse(time.RFC3339, value)
}

// writeReport 输出报告，报告带错误时返回该错误
func writeReport(w io.Writer, report notify.TickReport) error {
	if report.Err != nil {
		return report.Err
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
