package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"sitevoice/internal/audio"
	"sitevoice/internal/conversation"
	"sitevoice/internal/i18n"
	"sitevoice/internal/ipc"
	"sitevoice/internal/notify"
	"sitevoice/internal/offline"
	"sitevoice/internal/proxy"
	"sitevoice/internal/tts"
	"sitevoice/internal/upload"
	"sitevoice/internal/webhook"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	webhookURL := cli.StringP("webhook", "w", "", "Voice webhook URL")
	uploadURL := cli.StringP("upload", "u", "", "Photo/file upload URL (defaults to the webhook URL)")
	lang := cli.StringP("lang", "L", "fi", "Language (fi/et/en)")
	greeting := cli.StringP("greeting", "g", "greeting.mp3", "Greeting clip path")
	beepPath := cli.StringP("beep", "b", "", "Listening cue clip path (optional)")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS proxy address (optional)")
	dbPath := cli.StringP("db", "d", "offline.db", "Offline queue database path")
	maxRecord := cli.Duration("max-record", 0, "Recording length cap (0 = unlimited)")
	sockPath := cli.StringP("sock", "s", ipc.DefaultSocketPath, "Control socket path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	if *webhookURL == "" {
		*webhookURL = os.Getenv("SITEVOICE_WEBHOOK_URL")
	}
	if *webhookURL == "" {
		log.Error("Webhook URL not set (--webhook or SITEVOICE_WEBHOOK_URL)")
		os.Exit(1)
	}
	if *uploadURL == "" {
		*uploadURL = os.Getenv("SITEVOICE_UPLOAD_URL")
	}
	if *uploadURL == "" {
		*uploadURL = *webhookURL
	}
	if !i18n.Valid(i18n.Language(*lang)) {
		log.Error("Unknown language", "lang", *lang)
		os.Exit(1)
	}

	var httpClient *http.Client
	if *proxyAddr != "" {
		var err error
		httpClient, err = proxy.NewSocksClient(*proxyAddr, 120*time.Second)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	} else {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	rec := audio.NewRecorder()
	rec.SetMaxDuration(*maxRecord)
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	player := audio.NewPlayer(audio.DefaultLoadTimeout)
	client := webhook.NewClient(httpClient)

	queue, err := offline.Open(*dbPath)
	if err != nil {
		log.Error("Failed to open offline queue", "path", *dbPath, "err", err)
		os.Exit(1)
	}
	defer queue.Close()

	env := conversation.NewSystemEnv(*webhookURL)
	uploader := upload.NewUploader(httpClient, queue, env)

	machine := conversation.NewMachine(conversation.Config{
		Language:     i18n.Language(*lang),
		WebhookURL:   *webhookURL,
		GreetingPath: *greeting,
	}, rec, player, client, notify.Desktop{}, env)

	log.Info("Boot up - successful")

	d := &daemon{
		machine:   machine,
		player:    player,
		uploader:  uploader,
		queue:     queue,
		uploadURL: *uploadURL,
		beepPath:  *beepPath,
	}

	if err := ipc.StartServer(*sockPath, d.handleCommand); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	select {}
}

type daemon struct {
	machine   *conversation.Machine
	player    *audio.Player
	uploader  *upload.Uploader
	queue     *offline.Queue
	uploadURL string
	beepPath  string
}

func (d *daemon) handleCommand(msg ipc.ControlMessage) ipc.Reply {
	switch msg.Cmd {
	case "trigger":
		if d.beepPath != "" && !d.machine.WaitingToStop() && d.machine.State().Phase == conversation.PhaseIdle {
			if err := notify.Beep(d.beepPath); err != nil {
				log.Debug("Failed to play cue", "err", err)
			}
		}
		if err := d.machine.PrimaryAction(context.Background()); err != nil {
			if err == conversation.ErrBusy {
				return ipc.Reply{OK: true, Msg: "busy"}
			}
			return ipc.Reply{Msg: err.Error()}
		}
		return ipc.Reply{OK: true, Msg: string(d.machine.State().Phase)}

	case "reset":
		d.machine.Reset()
		return ipc.Reply{OK: true, Msg: "idle"}

	case "upload":
		return d.handleUpload(msg.Args)

	case "sync":
		n, err := d.queue.SyncPending(context.Background(), d.uploadURL)
		if err != nil {
			return ipc.Reply{Msg: err.Error()}
		}
		return ipc.Reply{OK: true, Msg: fmt.Sprintf("synced %d", n)}

	case "config":
		d.machine.UpdateConfig(i18n.Language(msg.Args["lang"]), msg.Args["webhook"])
		cfg := d.machine.Config()
		return ipc.Reply{OK: true, Msg: fmt.Sprintf("lang=%s webhook=%s", cfg.Language, cfg.WebhookURL)}

	case "state":
		data, err := json.Marshal(d.machine.State())
		if err != nil {
			return ipc.Reply{Msg: err.Error()}
		}
		return ipc.Reply{OK: true, Msg: string(data)}

	case "log":
		data, err := json.Marshal(d.machine.Messages())
		if err != nil {
			return ipc.Reply{Msg: err.Error()}
		}
		return ipc.Reply{OK: true, Msg: string(data)}

	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Reply{Msg: "unknown command"}
	}
}

// handleUpload submits a photo or file from disk for analysis. When
// the endpoint is unreachable the blob lands in the offline queue and
// is sent on the next sync.
func (d *daemon) handleUpload(args map[string]string) ipc.Reply {
	path := args["path"]
	if path == "" {
		return ipc.Reply{Msg: "upload needs a path argument"}
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return ipc.Reply{Msg: err.Error()}
	}

	filename := args["name"]
	if filename == "" {
		filename = filepath.Base(path)
	}
	filetype := args["filetype"]
	if filetype == "" {
		filetype = mime.TypeByExtension(filepath.Ext(path))
	}
	source := args["source"]
	if source == "" {
		source = "file_upload"
	}
	wantAudio := args["audio"] == "true"

	res, queued, err := d.uploader.Submit(context.Background(), d.uploadURL, blob, filename, upload.Options{
		Filetype:    filetype,
		Source:      source,
		Location:    args["location"],
		Unit:        args["unit"],
		Description: args["description"],
		WantAudio:   wantAudio,
	})
	if err != nil {
		return ipc.Reply{Msg: err.Error()}
	}
	if queued {
		t := i18n.Get(d.machine.Config().Language)
		return ipc.Reply{OK: true, Msg: t.SavedOffline}
	}
	if len(res.Audio) > 0 {
		if err := d.player.PlayBytes(context.Background(), res.Audio); err != nil {
			log.Warn("Failed to play analysis audio", "err", err)
		}
	} else if wantAudio && res.Text != "" {
		// server answered text only, speak it locally
		if err := tts.Speak(res.Text, string(d.machine.Config().Language)); err != nil {
			log.Warn("Failed to speak analysis", "err", err)
		}
	}
	return ipc.Reply{OK: true, Msg: res.Text}
}
