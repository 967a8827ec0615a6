package back

// This file contains functions specific to the web frontend.
// Please do not call them outside of the webserver.

import (
	"context"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

// leaderboardQuery selects every user of a guild, lowest ELO first.
func leaderboardQuery(guildID string) (string, []interface{}, error) {
	return squirrel.Select("*").
		From("users").
		Where("? = ANY(mutual_servers)", guildID).
		OrderBy("elo ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// GetLeaderboardEntries returns all the users that are members of the given
// guild, ordered by ELO ascending. The guild ID is passed as-is to the query.
// Errors are logged and returned unchanged, there is no partial result.
func (b *Back) GetLeaderboardEntries(ctx context.Context, guildID string) ([]User, error) {
	query, args, err := leaderboardQuery(guildID)
	if err != nil {
		b.log.Error("unable to build leaderboard query", zap.String("guild_id", guildID), zap.Error(err))
		return nil, err
	}

	ret := []User{}
	if err := b.db.Unsafe().SelectContext(ctx, &ret, query, args...); err != nil {
		b.log.Error("unable to fetch leaderboard entries", zap.String("guild_id", guildID), zap.Error(err))
		return nil, err
	}

	b.log.Debug("fetched leaderboard entries", zap.String("guild_id", guildID), zap.Int("count", len(ret)))

	return ret, nil
}
