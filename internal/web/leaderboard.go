package web

import (
	"fluggy/internal/back"
	"net/http"
)

// MissingGuildIDMessage is shown when the leaderboard is requested without
// a guildId query parameter.
const MissingGuildIDMessage = "Error: No guildId provided in URL query params."

// LeaderboardRow is a user and its position in the guild leaderboard.
type LeaderboardRow struct {
	Rank int
	back.User
}

type leaderboardTemplateData struct {
	Locale  string
	GuildID string
	Error   string
	Rows    []LeaderboardRow
}

func newLeaderboardRows(users []back.User) []LeaderboardRow {
	ret := make([]LeaderboardRow, 0, len(users))
	for k := range users {
		ret = append(ret, LeaderboardRow{
			Rank: k + 1,
			User: users[k],
		})
	}

	return ret
}

// getLeaderboard renders the leaderboard of the guild given in the guildId
// query parameter, in the order given by the source.
func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	locale := localeFromRequest(r)
	guildID := r.URL.Query().Get("guildId")
	if guildID == "" {
		s.response(w, r, http.StatusBadRequest, "leaderboard.html", leaderboardTemplateData{
			Locale: locale,
			Error:  MissingGuildIDMessage,
		})
		return
	}

	users, err := s.source.GetLeaderboardEntries(r.Context(), guildID)
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	s.response(w, r, http.StatusOK, "leaderboard.html", leaderboardTemplateData{
		Locale:  locale,
		GuildID: guildID,
		Rows:    newLeaderboardRows(users),
	})
}
