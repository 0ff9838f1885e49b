package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/intervox/intervox/internal/audio"
	"github.com/intervox/intervox/internal/config"
	"github.com/intervox/intervox/internal/gateway"
	"github.com/intervox/intervox/internal/gdrive"
	"github.com/intervox/intervox/internal/interview"
	"github.com/intervox/intervox/internal/realtime"
	"github.com/intervox/intervox/internal/server"
	"github.com/intervox/intervox/internal/storage"
)

// stateStore is everything main needs from a persistence backend.
type stateStore interface {
	interview.SnapshotStore
	interview.HistoryStore
	server.VisitStore
}

// reportingSink writes a markdown report for each completed interview before
// broadcasting the completion event.
type reportingSink struct {
	*server.Hub
	writer *storage.Writer
}

func (s *reportingSink) SessionCompleted(res interview.Result) {
	if err := s.writer.Append(res); err != nil {
		log.Printf("warning: report export failed: %v", err)
	}
	s.Hub.SessionCompleted(res)
}

func main() {
	log.Println("intervox: starting")

	cfgPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, warnings, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	for _, w := range warnings {
		log.Printf("warning: %s", w)
	}

	var store stateStore
	sqlStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Printf("warning: sqlite unavailable, progress and history will not persist: %v", err)
		store = storage.NewMemoryStore()
	} else {
		store = sqlStore
		defer func() { _ = sqlStore.Close() }()
	}

	hub := server.NewHub()
	writer := storage.NewWriter(cfg.ReportDir)
	sink := &reportingSink{Hub: hub, writer: writer}

	provider, modelName, err := gateway.ParseModel(cfg.TextModel)
	if err != nil {
		log.Fatalf("invalid text_model %q: %v", cfg.TextModel, err)
	}
	completer, err := gateway.NewCompleter(provider, cfg.APIKeyFor(provider), modelName)
	if err != nil {
		log.Printf("warning: %s provider unavailable, interviews cannot start: %v", provider, err)
		completer = gateway.UnavailableCompleter(err)
	}

	var tts gateway.Synthesizer
	if cfg.GeminiAPIKey != "" {
		_, ttsModel, ttsErr := gateway.ParseModel(cfg.TTSModel)
		if ttsErr != nil {
			ttsModel = cfg.TTSModel
		}
		synth, synthErr := gateway.NewGeminiSynthesizer(cfg.GeminiAPIKey, ttsModel)
		if synthErr != nil {
			log.Printf("warning: question read-out unavailable: %v", synthErr)
		} else {
			tts = synth
		}
	}

	var rtOpener gateway.RealtimeOpener
	if cfg.DeepgramAPIKey != "" {
		rtOpener = realtime.NewDeepgram(cfg.DeepgramAPIKey, cfg.STTModel)
	}

	client := gateway.NewClient(completer, tts, rtOpener)
	client.SetVoices(cfg.VoiceEnglish, cfg.VoiceArabic)
	gw := gateway.NewResilient(client)

	var voice interview.Voice
	if err := portaudio.Initialize(); err != nil {
		log.Printf("warning: audio device unavailable, running API-only: %v", err)
	} else {
		defer func() { _ = portaudio.Terminate() }()
		voice = audio.NewBridge(audio.NewRecorder(cfg.AudioDir))
	}

	svc := interview.NewService(gw, store, store, voice, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Handler(hub, svc, store, warnings),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	if cfg.GDriveFolderID != "" {
		syncer, syncErr := gdrive.NewSyncer(ctx, cfg.GoogleCredentialsFile, cfg.GDriveFolderID)
		if syncErr != nil {
			log.Printf("warning: gdrive sync disabled: %v", syncErr)
		} else {
			go func() {
				ticker := time.NewTicker(5 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						body, openErr := writer.OpenCurrent()
						if openErr != nil {
							// No interviews completed today yet.
							continue
						}
						results, _ := store.ListResults()
						rep := gdrive.DailyReport(time.Now().Format("2006-01-02"), body, results)
						if err := syncer.Sync(rep); err != nil {
							log.Printf("gdrive sync error: %v", err)
						}
						_ = body.Close()
					}
				}
			}()
		}
	}

	log.Printf("intervox: API on http://%s", cfg.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("intervox: shutting down")
	cancel()

	if ctrl := svc.Current(); ctrl != nil {
		if err := ctrl.SaveProgress(); err == nil {
			log.Println("intervox: interview progress saved")
		}
		ctrl.Cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("warning: http shutdown failed: %v", err)
	}
}
