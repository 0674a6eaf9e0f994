package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/boardpull/trello-harvester/internal/config"
	"github.com/boardpull/trello-harvester/internal/domain"
	"github.com/boardpull/trello-harvester/internal/logger"
	"github.com/boardpull/trello-harvester/internal/storage"
	"github.com/boardpull/trello-harvester/pkg/httpclient"
	"github.com/boardpull/trello-harvester/pkg/sinks"
	"github.com/boardpull/trello-harvester/pkg/trello"
)

// BoardAPI is the slice of the Trello client the harvest loop consumes.
// Operations return the decoded payload or nil; they never return errors.
type BoardAPI interface {
	ListMyBoards(ctx context.Context) any
	GetBoard(ctx context.Context, idBoard string) any
	ListCardsOnBoard(ctx context.Context, idBoard string) any
}

// Harvester drives the harvest passes: list the user's boards, then fetch
// each board's detail and open cards, persisting every result through the
// configured sinks. Boards are independent of each other; a failed board
// never aborts the pass.
type Harvester struct {
	cfg      *config.Config
	api      BoardAPI
	fanout   *sinks.Fanout
	store    storage.Store
	interval time.Duration
	log      logger.Logger
}

// NewHarvester builds a harvester runtime from config.
func NewHarvester(cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	creds := trello.Credentials{Key: cfg.APIKey, Token: cfg.APIToken}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	client := trello.NewClient(creds,
		trello.WithBaseURL(cfg.BaseURL),
		trello.WithHTTPClient(httpclient.NewRestyClient(cfg.RequestTimeout)),
		trello.WithLogger(log),
	)

	fanout, err := buildFanout(cfg, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Harvester{
		cfg:      cfg,
		api:      client,
		fanout:   fanout,
		store:    store,
		interval: cfg.HarvestInterval,
		log:      log,
	}, nil
}

// buildFanout loads the sink registry and instantiates the enabled sinks.
// A missing sinks file falls back to a single file sink at output_dir so a
// bare environment still produces the JSON files.
func buildFanout(cfg *config.Config, log logger.Logger) (*sinks.Fanout, error) {
	sinkCfgs, err := loadSinkConfigs(cfg, log)
	if err != nil {
		return nil, err
	}
	if len(sinkCfgs) == 0 {
		return nil, fmt.Errorf("no sinks configured")
	}

	built, err := sinks.BuildAll(sinks.DefaultRegistry(), sinkCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(sinkCfgs))
	for _, sc := range sinkCfgs {
		summaries = append(summaries, map[string]string{
			"id":   sc.ID,
			"type": sc.Type,
		})
	}
	log.InfoObj("sinks configured", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})

	return sinks.NewFanout(built), nil
}

func loadSinkConfigs(cfg *config.Config, log logger.Logger) ([]sinks.SinkConfig, error) {
	reg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.WarnObj("sinks file not found, defaulting to file sink", "sinks_file", cfg.SinksFile)
			return []sinks.SinkConfig{{
				ID:   "json-files",
				Type: sinks.TypeFile,
				File: &sinks.FileSinkConfig{Dir: cfg.OutputDir},
			}}, nil
		}
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	return reg.Enabled(), nil
}

// Run executes harvest passes until the context is cancelled. With a zero
// interval a single pass runs and Run returns.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.api == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.closeStore()

	h.log.InfoObj("harvester starting", "harvester_state", map[string]any{
		"sinks_count":      h.fanout.Size(),
		"harvest_interval": h.interval.String(),
	})

	if err := h.runOnce(ctx); err != nil {
		h.log.ErrorObj("harvest pass failed", "error", err.Error())
		if h.interval <= 0 {
			return err
		}
	}
	if h.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := h.runOnce(ctx); err != nil {
				h.log.ErrorObj("harvest pass failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs one full harvest pass.
func (h *Harvester) runOnce(ctx context.Context) error {
	start := time.Now()

	boards := h.api.ListMyBoards(ctx)
	if boards == nil {
		return fmt.Errorf("board listing produced no data")
	}
	h.persist(ctx, sinks.NewArtifact(sinks.KindBoards, "", boards))

	refs, err := domain.BoardRefsFromPayload(boards)
	if err != nil {
		return fmt.Errorf("project board list: %w", err)
	}

	persisted := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if board := h.api.GetBoard(ctx, ref.ID); board != nil {
			h.persist(ctx, sinks.NewArtifact(sinks.KindBoard, ref.ID, board))
			persisted++
		} else {
			h.log.WarnObj("board detail produced no data", "board_id", ref.ID)
		}

		if cards := h.api.ListCardsOnBoard(ctx, ref.ID); cards != nil {
			h.persist(ctx, sinks.NewArtifact(sinks.KindCards, ref.ID, cards))
			persisted++
		} else {
			h.log.WarnObj("card listing produced no data", "board_id", ref.ID)
		}
	}

	h.log.InfoObj("harvest pass completed", "pass_meta", map[string]any{
		"boards_count":        len(refs),
		"artifacts_persisted": persisted,
		"elapsed_ms":          time.Since(start).Milliseconds(),
	})
	return nil
}

// persist routes one artifact through the sinks unless its content digest
// matches the recorded snapshot. Sink failures are logged, never fatal.
func (h *Harvester) persist(ctx context.Context, art sinks.Artifact) {
	sum, err := payloadDigest(art.Payload)
	if err != nil {
		h.log.ErrorObj("artifact digest failed", "artifact_error", map[string]any{
			"key":   art.Key(),
			"error": err.Error(),
		})
		return
	}

	unchanged, err := h.store.UnchangedSnapshot(art.Key(), sum)
	if err != nil {
		h.log.WarnObj("snapshot lookup failed", "storage_error", map[string]any{
			"key":   art.Key(),
			"error": err.Error(),
		})
	} else if unchanged {
		h.log.DebugObj("snapshot unchanged, skipping", "artifact_key", art.Key())
		return
	}

	count, err := h.fanout.Write(ctx, art)
	if err != nil {
		h.log.ErrorObj("sink write failed", "sink_error", map[string]any{
			"key":        art.Key(),
			"successful": count,
			"error":      err.Error(),
		})
	}
	if count == 0 {
		return
	}

	if err := h.store.RecordSnapshot(art.Key(), sum); err != nil {
		h.log.WarnObj("snapshot record failed", "storage_error", map[string]any{
			"key":   art.Key(),
			"error": err.Error(),
		})
	}
}

// payloadDigest hashes the canonical on-disk rendering of the payload.
func payloadDigest(payload any) ([]byte, error) {
	data, err := sinks.MarshalPayload(payload)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (h *Harvester) closeStore() {
	if h == nil || h.store == nil {
		return
	}
	if err := h.store.Close(); err != nil {
		h.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
