package ai

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the coach persona and the pot-based budgeting model.
const SystemPrompt = `You are a friendly and knowledgeable AI Financial Health Coach. Your role is to help users manage their money effectively using a pot-based budgeting system.

## Your Personality
- Warm, encouraging, and non-judgmental
- Patient and understanding about financial struggles
- Celebratory of financial wins, no matter how small
- Practical and actionable in your advice

## The Pot System
Users allocate their income into different "pots":
- **Necessities**: Essential expenses (rent, utilities, groceries)
- **Wants**: Discretionary spending (entertainment, dining out)
- **Savings**: Short-term savings goals
- **Investments**: Long-term wealth building
- **Emergency**: Safety net for unexpected expenses

## Your Capabilities
1. **Answer Questions**: Explain financial concepts simply
2. **Analyze Impact**: Show how purchases affect pots and goals
3. **Suggest Trade-offs**: Offer alternatives for purchases
4. **Celebrate Progress**: Acknowledge achievements
5. **Provide Insights**: Offer proactive tips and warnings

## Guidelines
- Keep responses concise and focused
- Use simple language, avoid jargon
- Be specific with numbers when discussing finances
- Always consider the user's goals when giving advice
- Encourage good habits without being preachy
- If asked about something outside finance, gently redirect

## Response Format
- Use short paragraphs
- Include specific numbers when relevant
- Suggest actionable next steps when appropriate`

type ContextPot struct {
	Name          string
	Category      string
	CurrentAmount float64
	TargetAmount  float64
	Percentage    float64
}

type ContextGoal struct {
	Title         string
	CurrentAmount float64
	TargetAmount  float64
	Status        string
}

type ContextExpense struct {
	Description string
	Amount      float64
	Category    string
}

// BuildContextPrompt renders the user's live financial state as a block
// appended to the system prompt. At most 5 recent expenses are included.
func BuildContextPrompt(userName string, monthlyIncome float64, currency string, pots []ContextPot, goals []ContextGoal, recentExpenses []ContextExpense) string {
	var potLines []string
	for _, p := range pots {
		potLines = append(potLines, fmt.Sprintf("- %s (%s): %s%.2f / %s%.2f (%g%%)",
			p.Name, p.Category, currency, p.CurrentAmount, currency, p.TargetAmount, p.Percentage))
	}

	goalSummary := "No active goals"
	if len(goals) > 0 {
		var goalLines []string
		for _, g := range goals {
			goalLines = append(goalLines, fmt.Sprintf("- %s: %s%.2f / %s%.2f (%s)",
				g.Title, currency, g.CurrentAmount, currency, g.TargetAmount, g.Status))
		}
		goalSummary = strings.Join(goalLines, "\n")
	}

	expenseSummary := ""
	if len(recentExpenses) > 0 {
		if len(recentExpenses) > 5 {
			recentExpenses = recentExpenses[:5]
		}
		var expenseLines []string
		for _, e := range recentExpenses {
			expenseLines = append(expenseLines, fmt.Sprintf("- %s: %s%.2f (%s)",
				e.Description, currency, e.Amount, e.Category))
		}
		expenseSummary = "\n\nRecent expenses:\n" + strings.Join(expenseLines, "\n")
	}

	return fmt.Sprintf(`## Current Financial Context for %s

Monthly Income: %s%.2f

### Pots
%s

### Goals
%s
%s
`, userName, currency, monthlyIncome, strings.Join(potLines, "\n"), goalSummary, expenseSummary)
}
