package tui

import (
	"strconv"
	"strings"
)

// execute runs one line of user input and returns the lines to print. Plain
// text is chat with the mentor; slash commands map onto the typed client API.
// /quit is handled by the caller because it has to stop the program.
func (m *Model) execute(text string) []string {
	if !strings.HasPrefix(text, "/") {
		return m.intentLines(m.client.Chat(text))
	}

	fields := strings.Fields(text)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		return []string{helpText()}

	case "/connect":
		if err := m.client.Connect(); err != nil {
			return errLines(err)
		}
		return []string{dimStyle.Render("Connecting to " + m.conf.ServerURL + "...")}

	case "/disconnect":
		m.client.Disconnect()
		return nil

	case "/login":
		username, password := m.conf.Username, m.conf.Password
		switch {
		case len(args) >= 2:
			username, password = args[0], args[1]
		case len(args) == 1 || username == "" || password == "":
			return usage("/login <username> <password>")
		}
		return m.intentLines(m.client.Authenticate(username, password))

	case "/say":
		if len(args) == 0 {
			return usage("/say <message>")
		}
		return m.intentLines(m.client.Chat(strings.Join(args, " ")))

	case "/travel":
		if len(args) == 0 {
			return usage("/travel <destination>")
		}
		return m.intentLines(m.client.Travel(strings.Join(args, " ")))

	case "/world":
		return m.intentLines(m.client.World())

	case "/location", "/look":
		return m.intentLines(m.client.Location())

	case "/player", "/stats":
		return m.intentLines(m.client.PlayerState())

	case "/inventory", "/inv":
		return m.intentLines(m.client.Inventory())

	case "/status":
		return m.intentLines(m.client.Status())

	case "/check":
		return m.intentLines(m.client.CheckExercise())

	case "/complete":
		return m.intentLines(m.client.CompleteExercise())

	case "/cancel":
		m.client.CancelActivity()
		return []string{dimStyle.Render("Practice abandoned.")}

	case "/perform":
		score := 1.0
		if len(args) > 0 {
			parsed, err := strconv.ParseFloat(args[0], 64)
			if err != nil || parsed < 0 || parsed > 1 {
				return usage("/perform [score between 0 and 1]")
			}
			score = parsed
		}
		return m.intentLines(m.client.Perform(score))

	case "/collect":
		if len(args) == 0 {
			return usage("/collect <segment number>")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return usage("/collect <segment number>")
		}
		return m.intentLines(m.client.Collect(id))

	case "/quest":
		if len(args) > 0 && args[0] == "attempt" {
			return m.intentLines(m.client.FinalQuestAttempt())
		}
		return m.intentLines(m.client.FinalQuestCheck())

	default:
		return []string{errorStyle.Render("Unknown command " + cmd + ". Try /help.")}
	}
}

func (m *Model) intentLines(err error) []string {
	if err != nil {
		return errLines(err)
	}
	return nil
}

func errLines(err error) []string {
	return []string{errorStyle.Render("Error: " + err.Error())}
}

func usage(u string) []string {
	return []string{dimStyle.Render("Usage: " + u)}
}

func helpText() string {
	return dimStyle.Render(strings.TrimSpace(`
Commands:
  /connect                  Connect to the server
  /login [user] [pass]      Log in (uses configured credentials when omitted)
  /travel <destination>     Travel somewhere; arriving starts a practice
  /check                    Ask for practice progress now
  /complete                 Claim the practice is done
  /cancel                   Abandon the practice without telling the server
  /world                    Show the world map
  /location, /look          Describe where you are
  /player, /stats           Show your stats
  /inventory, /inv          Show collected song segments
  /status                   Show a compact status line
  /perform [score]          Perform for the crowd (score 0..1, default 1)
  /collect <n>              Collect song segment n
  /quest [check|attempt]    Check or attempt the final quest
  /say <message>            Say something out loud
  /disconnect               Drop the connection
  /quit                     Leave the game

Anything else is chat with your mentor.`))
}
