package term

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"streamboard/internal/app/ports"
	"streamboard/internal/board/view"
)

const helpText = "commands: follow <query> | unfollow <game_id> | search <query> | " +
	"ignore <user_id> [name] | unignore <user_id> | verified on|off | " +
	"min_viewers [n] | max_viewers [n] | min_followers [n] | max_followers [n] | " +
	"share | refresh | quit"

// RunInput reads line commands from stdin until EOF or quit. It blocks
// the calling goroutine; everything it touches is posted to the loop.
func (t *Term) RunInput(ctrl *view.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if t.dispatch(ctrl, line) {
			return
		}
	}
}

// dispatch reports true when the user asked to quit.
func (t *Term) dispatch(ctrl *view.Controller, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "y", "yes":
		t.loop.Post(func() { t.resolvePrompt(true) })
	case "n", "no":
		t.loop.Post(func() { t.resolvePrompt(false) })

	case "follow":
		if arg == "" {
			t.postStatus("usage: follow <query>")
			return false
		}
		ctrl.Search(arg, func(games []ports.Game, err error) {
			switch {
			case err != nil:
				t.SetStatus(fmt.Sprintf("search failed: %v", err))
			case len(games) == 0:
				t.SetStatus("no category matches " + arg)
			default:
				ctrl.FollowGame(games[0])
			}
		})

	case "search":
		if arg == "" {
			t.postStatus("usage: search <query>")
			return false
		}
		ctrl.Search(arg, func(games []ports.Game, err error) {
			if err != nil {
				t.SetStatus(fmt.Sprintf("search failed: %v", err))
				return
			}
			t.SetStatus(formatMatches(games))
		})

	case "unfollow":
		if arg == "" {
			t.postStatus("usage: unfollow <game_id>")
			return false
		}
		t.loop.Post(func() {
			name := arg
			for _, g := range t.games {
				if g.game.ID == arg {
					name = g.game.Name
					break
				}
			}
			ctrl.UnfollowGame(arg, name)
		})

	case "ignore":
		id, name, _ := strings.Cut(arg, " ")
		if id == "" {
			t.postStatus("usage: ignore <user_id> [name]")
			return false
		}
		var namePtr *string
		if name = strings.TrimSpace(name); name != "" {
			namePtr = &name
		}
		ctrl.IgnoreUser(id, namePtr)

	case "unignore":
		if arg == "" {
			t.postStatus("usage: unignore <user_id>")
			return false
		}
		ctrl.UnignoreUser(arg)

	case "verified":
		ctrl.SetVerifiedOnly(arg == "on" || arg == "true" || arg == "1")

	case "min_viewers":
		ctrl.SetMinViewers(arg)
	case "max_viewers":
		ctrl.SetMaxViewers(arg)
	case "min_followers":
		ctrl.SetMinFollowers(arg)
	case "max_followers":
		ctrl.SetMaxFollowers(arg)

	case "share":
		ctrl.Share()

	case "refresh":
		ctrl.Refresh()

	case "help":
		t.postStatus(helpText)

	case "quit", "exit", "q":
		t.Quit()
		return true

	default:
		t.postStatus("unknown command, try: help")
	}
	return false
}

func (t *Term) postStatus(msg string) {
	t.loop.Post(func() { t.SetStatus(msg) })
}

func formatMatches(games []ports.Game) string {
	if len(games) == 0 {
		return "no matches"
	}
	if len(games) > 5 {
		games = games[:5]
	}
	parts := make([]string, 0, len(games))
	for _, g := range games {
		parts = append(parts, g.ID+"="+g.Name)
	}
	return "matches: " + strings.Join(parts, ", ")
}
