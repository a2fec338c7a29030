package main

import (
	"fmt"
	"strings"

	"github.com/lazharichir/blackjack/rules"
	"github.com/lazharichir/blackjack/table"
	"github.com/pterm/pterm"
)

func outcomeLabel(o rules.Outcome) string {
	switch o {
	case rules.OutcomeBlackjack:
		return pterm.LightGreen("BLACKJACK")
	case rules.OutcomeWin:
		return pterm.Green("win")
	case rules.OutcomePush:
		return pterm.Yellow("push")
	default:
		return pterm.LightRed(string(o))
	}
}

func playerCards(hands [][]string) string {
	parts := make([]string, len(hands))
	for i, h := range hands {
		parts[i] = strings.Join(h, " ")
	}
	return strings.Join(parts, " | ")
}

// renderAutoplay prints one row per round and a summary box
func renderAutoplay(results []table.RoundResult, total float64) {
	data := pterm.TableData{{"Round", "Player", "Dealer", "Outcome", "Payoff"}}
	for i, res := range results {
		outcomes := make([]string, len(res.Outcomes))
		for j, o := range res.Outcomes {
			outcomes[j] = outcomeLabel(o)
		}
		data = append(data, []string{
			fmt.Sprint(i + 1),
			playerCards(res.PlayerCards),
			fmt.Sprintf("%s (%d)", strings.Join(res.DealerCards, " "), res.DealerValue),
			strings.Join(outcomes, ", "),
			fmt.Sprintf("%+.1f", res.Payoff),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	perRound := 0.0
	if len(results) > 0 {
		perRound = total / float64(len(results))
	}
	summary := pterm.Sprintfln("Rounds played: %d", len(results)) +
		pterm.Sprintfln("Total payoff:  %+.2f", total) +
		pterm.Sprintf("Per round:     %+.4f", perRound)
	pterm.DefaultBox.WithTitle(pterm.LightYellow("|AUTOPLAY|")).WithTitleTopCenter().
		WithLeftPadding(4).WithRightPadding(4).Println(summary)
}
