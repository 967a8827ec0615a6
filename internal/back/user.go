package back

import (
	"context"
	"fluggy/internal/util"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UnrankedElo is the rating of a user whose Steam profile was not found on
// the global leaderboard yet.
const UnrankedElo = -1

// A User is a Discord member that linked a Steam account, one row of the
// users table. The rows are written by the bot, this package only reads
// them.
type User struct {
	DiscordID            string               `db:"discord_id"`
	SteamID              string               `db:"steam_id"`
	PfpURL               string               `db:"pfp_url"`
	MutualServers        pq.StringArray       `db:"mutual_servers"`
	Elo                  int                  `db:"elo"`
	GlobalRankLB         int                  `db:"global_rank_lb"`
	GlobalRankUB         int                  `db:"global_rank_ub"`
	UpdatedAt            util.TimeAsTimestamp `db:"timestamp"`
	WantsNicknameUpdates bool                 `db:"wants_nickname_updates"`
	PlayerCardInfo       util.StringMapAsJSON `db:"player_card_info"`
}

func (u User) IsRanked() bool {
	return u.Elo > UnrankedElo
}

func (u User) SteamProfileURL() string {
	if u.SteamID == "" {
		return ""
	}

	return "https://steamcommunity.com/profiles/" + u.SteamID
}

// GlobalRank formats the global leaderboard position, players sharing the
// same ELO share a range of ranks.
func (u User) GlobalRank() string {
	switch {
	case u.GlobalRankLB <= 0:
		return ""
	case u.GlobalRankUB <= u.GlobalRankLB:
		return fmt.Sprintf("#%d", u.GlobalRankLB)
	default:
		return fmt.Sprintf("#%d–%d", u.GlobalRankLB, u.GlobalRankUB)
	}
}

// CardColors returns the primary and secondary player card colors, unknown
// values are returned as empty strings.
func (u User) CardColors() (primary, secondary string) {
	return cardColor(u.PlayerCardInfo.Get("primary_color")),
		cardColor(u.PlayerCardInfo.Get("secondary_color"))
}

var cardColors = map[string]struct{}{ // nolint:gochecknoglobals
	"red": {}, "green": {}, "blue": {}, "yellow": {}, "cyan": {}, "pink": {},
	"orange": {}, "white": {}, "black": {}, "grey": {}, "beige": {},
}

func cardColor(v string) string {
	if _, ok := cardColors[v]; !ok {
		return ""
	}

	return v
}

func (u *User) upsert(ctx context.Context, tx *sqlx.Tx) error {
	// A nil array is sent as NULL, the column is NOT NULL.
	servers := u.MutualServers
	if servers == nil {
		servers = pq.StringArray{}
	}

	query, args, err := squirrel.Insert("users").SetMap(squirrel.Eq{
		"discord_id":             u.DiscordID,
		"steam_id":               u.SteamID,
		"pfp_url":                u.PfpURL,
		"mutual_servers":         servers,
		"elo":                    u.Elo,
		"global_rank_lb":         u.GlobalRankLB,
		"global_rank_ub":         u.GlobalRankUB,
		"timestamp":              u.UpdatedAt,
		"wants_nickname_updates": u.WantsNicknameUpdates,
		"player_card_info":       u.PlayerCardInfo,
	}).Suffix(`ON CONFLICT (discord_id) DO UPDATE SET
        steam_id = EXCLUDED.steam_id,
        pfp_url = EXCLUDED.pfp_url,
        mutual_servers = EXCLUDED.mutual_servers,
        elo = EXCLUDED.elo,
        global_rank_lb = EXCLUDED.global_rank_lb,
        global_rank_ub = EXCLUDED.global_rank_ub,
        timestamp = EXCLUDED.timestamp,
        wants_nickname_updates = EXCLUDED.wants_nickname_updates,
        player_card_info = EXCLUDED.player_card_info`,
	).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

// InsertUsers creates or replaces the given users in a single transaction.
// It only exists for development fixtures and tests.
func (b *Back) InsertUsers(ctx context.Context, users []User) error {
	return util.Transaction(ctx, b.db, func(tx *sqlx.Tx) error {
		for k := range users {
			if err := users[k].upsert(ctx, tx); err != nil {
				return fmt.Errorf("unable to insert user %s: %w", users[k].DiscordID, err)
			}
		}

		return nil
	})
}
