package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	gonotify "github.com/go-pkgz/notify"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/robfig/cron/v3"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/repairdesk/repairdesk/app/auth"
	"github.com/repairdesk/repairdesk/app/config"
	"github.com/repairdesk/repairdesk/app/desk"
	"github.com/repairdesk/repairdesk/app/export"
	"github.com/repairdesk/repairdesk/app/lifecycle"
	"github.com/repairdesk/repairdesk/app/notify"
	"github.com/repairdesk/repairdesk/app/outsource"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/web"
)

var opts struct {
	DB       string `long:"db" env:"REPAIRDESK_DB" default:"var/repairdesk.db" description:"sqlite database file"`
	Config   string `short:"c" long:"config" env:"REPAIRDESK_CONFIG" description:"shop settings yaml file"`
	Schedule string `long:"schedule" env:"REPAIRDESK_SCHEDULE" default:"@hourly" description:"lifecycle scan cron spec"`
	Import   string `long:"import" env:"REPAIRDESK_IMPORT" description:"import jobs from csv file and exit"`
	Dbg      bool   `long:"dbg" env:"REPAIRDESK_DEBUG" description:"debug mode"`

	Web struct {
		Address     string        `long:"address" env:"ADDRESS" default:":8080" description:"web server listen address"`
		LoginRate   float64       `long:"login-rate" env:"LOGIN_RATE" default:"1" description:"login and password reset attempts per second per client"`
		SessionTTL  time.Duration `long:"session-ttl" env:"SESSION_TTL" default:"12h" description:"session lifetime"`
		RememberTTL time.Duration `long:"remember-ttl" env:"REMEMBER_TTL" default:"720h" description:"remember me session lifetime"`
	} `group:"web" namespace:"web" env-namespace:"REPAIRDESK_WEB"`

	Repeater struct {
		Attempts int           `long:"attempts" env:"ATTEMPTS" default:"3" description:"how many times to try a failed delivery"`
		Duration time.Duration `long:"duration" env:"DURATION" default:"1s" description:"initial duration"`
		Factor   float64       `long:"factor" env:"FACTOR" default:"3" description:"backoff factor"`
		Jitter   bool          `long:"jitter" env:"JITTER" description:"jitter"`
	} `group:"repeater" namespace:"repeater" env-namespace:"REPAIRDESK_REPEATER"`

	Notify struct {
		SMTPHost     string        `long:"smtp-host" env:"SMTP_HOST" description:"SMTP host"`
		SMTPPort     int           `long:"smtp-port" env:"SMTP_PORT" default:"25" description:"SMTP port"`
		SMTPUsername string        `long:"smtp-username" env:"SMTP_USERNAME" description:"SMTP user name"`
		SMTPPassword string        `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
		SMTPTLS      bool          `long:"smtp-tls" env:"SMTP_TLS" description:"enable SMTP TLS"`
		Timeout      time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"delivery timeout"`
		FromEmail    string        `long:"from" env:"FROM" description:"SMTP from email"`
		ToEmails     []string      `long:"to" env:"TO" description:"staff email(s) receiving notice copies" env-delim:","`
		Webhooks     []string      `long:"webhook" env:"WEBHOOK" description:"webhook url(s) receiving notice text" env-delim:","`
		Concurrency  int           `long:"concurrency" env:"CONCURRENCY" default:"4" description:"parallel deliveries"`
		HostName     string        `long:"host" env:"HOSTNAME" description:"host name used for the default from email"`
	} `group:"notify" namespace:"notify" env-namespace:"REPAIRDESK_NOTIFY"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging to file"`
		Filename        string `long:"filename" env:"FILENAME" default:"var/repairdesk.log" description:"log file name"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of rotated files"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max age of rotated files in days"`
		EnabledCompress bool   `long:"compress" env:"COMPRESS" description:"gzip rotated files"`
	} `group:"log" namespace:"log" env-namespace:"REPAIRDESK_LOG"`
}

var revision = "unknown"

func main() {
	fmt.Printf("repairdesk %s\n", revision)

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	out := setupLogs()
	if closer, ok := out.(io.Closer); ok {
		defer closer.Close()
	}

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel) // handle SIGQUIT, SIGINT and SIGTERM

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run wires all services and blocks until ctx is canceled
func run(ctx context.Context) error {
	shop, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("can't load shop settings: %w", err)
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return fmt.Errorf("invalid lifecycle schedule %q: %w", opts.Schedule, err)
	}

	if dir := filepath.Dir(opts.DB); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("can't make database directory: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(opts.DB)
	if err != nil {
		return fmt.Errorf("can't open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("[WARN] failed to close store: %v", err)
		}
	}()

	if opts.Import != "" {
		return importJobs(ctx, st, opts.Import)
	}

	messenger := notify.NewService(notify.Params{
		ShopName: shop.Name,
		Location: shop.Location(),
		Templates: notify.Templates{
			Initial: shop.Templates.Initial,
			Final:   shop.Templates.Final,
			Update:  shop.Templates.Update,
		},
		Repeater: repeater.New(&strategy.Backoff{Repeats: opts.Repeater.Attempts, Duration: opts.Repeater.Duration,
			Factor: opts.Repeater.Factor, Jitter: opts.Repeater.Jitter}),
		Concurrency: opts.Notify.Concurrency,
	}, makeSenders())

	engine := &lifecycle.Engine{Store: st, Notifier: messenger, Activity: st, Windows: windows(shop.Retention)}
	reporter, err := export.NewReporter(export.ReportParams{Shop: shop.Name, Address: shop.Address,
		Phone: shop.Phone, Terms: shop.Terms, Location: shop.Location()})
	if err != nil {
		return fmt.Errorf("can't make reporter: %w", err)
	}

	srv, err := web.New(web.Config{
		Jobs:      &desk.Desk{Store: st, Engine: engine, Activity: st, Messenger: messenger, IDBase: shop.JobIDBase},
		Outsource: &outsource.Ledger{Store: st, Jobs: st, Activity: st, Location: shop.Location()},
		Accounts: auth.NewService(auth.Params{Store: st, Activity: st,
			SessionTTL: opts.Web.SessionTTL, RememberTTL: opts.Web.RememberTTL}),
		Activity:  st,
		Reporter:  reporter,
		Shop:      *shop,
		Version:   revision,
		LoginRate: opts.Web.LoginRate,
	})
	if err != nil {
		return err
	}

	// server stops when the scheduler does
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	scheduler := &lifecycle.Scheduler{Cron: cron.New(), Engine: engine, Spec: opts.Schedule}
	schedErr := make(chan error, 1)
	go func() {
		err := scheduler.Do(ctx)
		if err != nil {
			log.Printf("[ERROR] lifecycle scheduler stopped: %v", err)
		}
		cancel()
		schedErr <- err
	}()

	if err := srv.Run(ctx, opts.Web.Address); err != nil {
		cancel()
		<-schedErr
		return err
	}
	return <-schedErr
}

// importJobs loads jobs exported to csv back into the store, existing ids are replaced
func importJobs(ctx context.Context, st *store.SQLiteStore, path string) error {
	fh, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return fmt.Errorf("can't open %s: %w", path, err)
	}
	defer fh.Close()

	jobs, err := export.ParseJobsCSV(fh)
	if err != nil {
		return fmt.Errorf("can't parse %s: %w", path, err)
	}
	if len(jobs) == 0 {
		return errors.New("no jobs to import")
	}
	if err := st.SaveJobs(ctx, jobs); err != nil {
		return fmt.Errorf("can't save imported jobs: %w", err)
	}
	log.Printf("[INFO] imported %d jobs from %s", len(jobs), path)
	return nil
}

// windows converts retention days to lifecycle durations
func windows(r config.Retention) lifecycle.Windows {
	return lifecycle.Windows{Pickup: r.Pickup(), Confiscation: r.Confiscation(), FinalWarning: r.FinalWarning()}
}

// makeSenders returns staff destinations, from email is set from host name if missing
func makeSenders() notify.SendersParams {
	if len(opts.Notify.ToEmails) > 0 && opts.Notify.FromEmail == "" {
		opts.Notify.FromEmail = "repairdesk@" + makeHostName()
	}
	return notify.SendersParams{
		SMTP: gonotify.SMTPParams{
			Host:        opts.Notify.SMTPHost,
			Port:        opts.Notify.SMTPPort,
			TLS:         opts.Notify.SMTPTLS,
			Username:    opts.Notify.SMTPUsername,
			Password:    opts.Notify.SMTPPassword,
			TimeOut:     opts.Notify.Timeout,
			ContentType: "text/plain",
		},
		FromEmail: opts.Notify.FromEmail,
		ToEmails:  opts.Notify.ToEmails,
		Webhooks:  opts.Notify.Webhooks,
		Timeout:   opts.Notify.Timeout,
	}
}

func makeHostName() string {
	if opts.Notify.HostName != "" {
		return opts.Notify.HostName
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// setupLogs configures lgr and returns its output, rotated file if logging to file is enabled
func setupLogs() io.Writer {
	var out io.Writer = os.Stdout
	if opts.Log.Enabled {
		out = &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   opts.Log.EnabledCompress,
		}
	}

	if opts.Dbg {
		log.Setup(log.Out(out), log.Err(out), log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile)
		return out
	}
	log.Setup(log.Out(out), log.Err(out), log.Msec)
	return out
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			log.Printf("[INFO] %s received, shutting down", sig)
			cancel()
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM)
}
