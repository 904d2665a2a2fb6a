package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"rollcall/internal/api"
	"rollcall/internal/config"
	"rollcall/internal/journal"
	"rollcall/internal/logging"
	"rollcall/internal/resync"
	"rollcall/internal/source"
	"rollcall/internal/writeback"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// cliServices is the direct-mode stack: the CLI fetches, aggregates, and
// appends itself instead of going through a running daemon. The journal
// database is shared with the daemon; WAL mode keeps concurrent access safe.
type cliServices struct {
	cfg     *config.Config
	store   *journal.Store
	manager *resync.Manager
	entries *api.EntryService
}

func (c *commandContext) services() (*cliServices, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	logger := logging.NewNop()
	fetcher := source.NewClient(cfg.Source.URL, cfg.SourceTimeout())
	manager := resync.NewManager(fetcher, logger,
		resync.WithJournal(store),
		resync.WithResyncDelay(cfg.ResyncDelay()),
		resync.WithCycleTimeout(cfg.CycleTimeout()),
	)
	appender := writeback.NewClient(cfg.Append.URL, writeback.WithTimeout(cfg.AppendTimeout()))
	entries := api.NewEntryService(store, appender, manager, cfg.Append.DefaultAuthor, logger)
	return &cliServices{
		cfg:     cfg,
		store:   store,
		manager: manager,
		entries: entries,
	}, nil
}

func (s *cliServices) Close() {
	_ = s.store.Close()
}

// daemonGet queries the running daemon's HTTP API. Callers decide whether a
// connection failure is fatal or just means the daemon is down.
func (c *commandContext) daemonGet(path string, out any) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + cfg.Paths.APIBind + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
