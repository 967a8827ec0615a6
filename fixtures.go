package main

import (
	"context"
	"fluggy/internal/back"
	"fluggy/internal/config"
	"fluggy/internal/util"
	"time"

	"go.uber.org/zap"
)

func loadFixtures(conf *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	b, err := back.New(ctx, back.Options{
		DSN:                conf.DatabaseURL,
		InsecureSkipVerify: conf.DatabaseInsecureSkipVerify,
	}, log)
	if err != nil {
		return err
	}
	defer b.Close() // nolint:errcheck

	now := util.TimeAsTimestamp(time.Now())
	users := []back.User{
		{
			DiscordID:      "1",
			SteamID:        "76561198000000001",
			MutualServers:  []string{"g1"},
			Elo:            1200,
			GlobalRankLB:   120,
			GlobalRankUB:   120,
			UpdatedAt:      now,
			PlayerCardInfo: util.StringMapAsJSON{"primary_color": "blue"},
		},
		{
			DiscordID:      "2",
			SteamID:        "76561198000000002",
			MutualServers:  []string{"g1", "g2"},
			Elo:            900,
			GlobalRankLB:   340,
			GlobalRankUB:   345,
			UpdatedAt:      now,
			PlayerCardInfo: util.StringMapAsJSON{"primary_color": "red", "secondary_color": "white"},
		},
		{
			DiscordID:     "3",
			SteamID:       "76561198000000003",
			MutualServers: []string{"g2"},
			Elo:           1500,
			GlobalRankLB:  12,
			GlobalRankUB:  12,
			UpdatedAt:     now,
		},
		{
			DiscordID:     "4",
			MutualServers: []string{"g2", "g3"},
			Elo:           back.UnrankedElo,
		},
	}

	if err := b.InsertUsers(ctx, users); err != nil {
		return err
	}

	log.Info("fixtures loaded", zap.Int("users", len(users)))

	return nil
}
