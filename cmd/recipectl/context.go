package main

import (
	"context"
	"fmt"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/pageza/mealplanner/backend/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// commandContext loads configuration and shared clients on first use.
type commandContext struct {
	cfg *config.Config
	log *zap.Logger

	loadConfig func() (*config.Config, error)
	openDB     func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, error)
	newLLM     func(cfg *config.Config, log *zap.Logger) (*llm.Client, error)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) logger() (*zap.Logger, error) {
	if c.log != nil {
		return c.log, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	c.log = log
	return log, nil
}

func (c *commandContext) llmClient() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := c.logger()
	if err != nil {
		return nil, err
	}
	return c.newLLM(cfg, log)
}

func (c *commandContext) database(ctx context.Context) (*gorm.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := c.logger()
	if err != nil {
		return nil, err
	}
	return c.openDB(ctx, cfg, log)
}
