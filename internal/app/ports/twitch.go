package ports

type APIPort interface {
	SearchCategories(query string, first int) ([]Game, error)
	GetGames(ids []string) ([]Game, error)
	GetStreams(gameID string, maxStreams int, languages []string) ([]Stream, error)
	GetUsers(userIDs []string) ([]User, error)
	GetFollowerCount(broadcasterID string) (*int, error)
}
