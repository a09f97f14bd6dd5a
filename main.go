package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/matt-g-everett/ledbelt/api"
	"github.com/matt-g-everett/ledbelt/belt"
	"github.com/matt-g-everett/ledbelt/plot"
	"github.com/matt-g-everett/ledbelt/stream"
)

const timeFormat = "20060102-150405.000"

type app struct {
	Config     stream.Config
	Client     mqtt.Client
	Ticker     *belt.FrameTicker
	Belt       *belt.Belt
	Controller *stream.Controller
	Streamer   *stream.Streamer
	Control    *stream.Control
	Api        *api.Api
}

func newApp(config stream.Config) *app {
	a := new(app)
	a.Config = config
	return a
}

// mqttLogger routes paho's logging through zerolog.
type mqttLogger struct {
	level zerolog.Level
}

func (l mqttLogger) Println(v ...interface{}) {
	log.WithLevel(l.level).Str("context", "mqtt").Msg(fmt.Sprint(v...))
}

func (l mqttLogger) Printf(format string, v ...interface{}) {
	log.WithLevel(l.level).Str("context", "mqtt").Msgf(format, v...)
}

func configureLogger(level string) {
	zerolog.TimeFieldFormat = timeFormat
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat})
	zeroLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zeroLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(zeroLevel)
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Info().Str("context", "mqtt").Msg("connected")
	if err := a.Control.Subscribe(); err != nil {
		log.Error().Str("context", "mqtt").Err(err).Msg("control_subscribe_failed")
	}
}

func (a *app) build() error {
	options, err := a.Config.Belt.Options()
	if err != nil {
		return err
	}
	transitionEasing, err := belt.EasingByName(a.Config.Transition.Easing)
	if err != nil {
		return err
	}
	playlist, err := a.Config.BuildPlaylist(rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}

	clientID := a.Config.Mqtt.ClientID
	if clientID == "" {
		clientID = "ledbelt-" + uuid.NewString()[:8]
	}
	mqttOptions := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID(clientID).
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	a.Client = mqtt.NewClient(mqttOptions)

	a.Ticker = belt.NewFrameTicker(a.Config.FrameRate, belt.SystemClock)
	a.Belt = belt.New(a.Ticker, options)
	transitionTime := time.Duration(a.Config.Transition.DurationMs) * time.Millisecond
	a.Controller = stream.NewController(a.Ticker, transitionTime, transitionEasing, playlist...)
	publisher := stream.NewMQTTPublisher(a.Client, a.Config.Mqtt.Qos, a.Ticker.Interval())
	a.Streamer = stream.NewStreamer(a.Config.Mqtt.Topics.Stream, publisher, a.Belt, a.Controller)
	a.Control = stream.NewControl(a.Client, a.Config.Mqtt.Topics.Control, a.Config.Mqtt.Qos, a.Belt, a.Controller)
	a.Api = api.NewApi(a.Belt)
	return nil
}

func (a *app) run(ctx context.Context) error {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer a.Client.Disconnect(250)

	a.Streamer.Start()
	defer a.Streamer.Stop()
	a.Belt.Run()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Ticker.Run(ctx) })
	g.Go(func() error {
		return a.Controller.Run(ctx, time.Duration(a.Config.Transition.CycleMs)*time.Millisecond)
	})
	g.Go(func() error { return a.Api.Serve(ctx, a.Config.Http.Addr) })

	err := g.Wait()
	sent, failed := a.Streamer.Stats()
	log.Info().Uint64("sent", sent).Uint64("failed", failed).Msg("stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func plotCurve(config stream.Config, path string) error {
	options, err := config.Belt.Options()
	if err != nil {
		return err
	}
	frameRate := config.FrameRate
	if frameRate <= 0 {
		frameRate = 30
	}
	frame := time.Duration(float64(time.Second) / frameRate)
	points := plot.SampleRun(options, frame, 10000)
	return plot.SaveCurve(path, "belt progress", points)
}

func main() {
	mqtt.ERROR = mqttLogger{zerolog.ErrorLevel}
	mqtt.CRITICAL = mqttLogger{zerolog.ErrorLevel}

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	envPath := flag.String("env", ".env", "Optional dotenv file.")
	plotPath := flag.String("plot", "", "Write the configured progress curve to this image and exit.")
	flag.Parse()

	if _, err := os.Stat(*envPath); err == nil {
		if err := godotenv.Load(*envPath); err != nil {
			log.Fatal().Err(err).Msg("env_load_failed")
		}
	}

	// Read the config
	config, err := stream.ReadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config_load_failed")
	}
	config.ApplyEnv(os.Getenv)
	configureLogger(config.LogLevel)
	log.Info().Str("broker", config.Mqtt.URL).Float64("frameRate", config.FrameRate).Msg("config")

	if *plotPath != "" {
		if err := plotCurve(config, *plotPath); err != nil {
			log.Fatal().Err(err).Msg("plot_failed")
		}
		log.Info().Str("path", *plotPath).Msg("plot_written")
		return
	}

	a := newApp(config)
	if err := a.build(); err != nil {
		log.Fatal().Err(err).Msg("app_crashed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.run(ctx); err != nil {
		log.Fatal().Err(err).Msg("app_crashed")
	}
}
