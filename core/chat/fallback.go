package chat

import (
	"fmt"
	"strings"
)

// fallbackTopic answers a recognized topic without the assistant service.
type fallbackTopic struct {
	keywords []string
	answer   string
}

// fallbackTopics are matched in order against the lowercased question.
var fallbackTopics = []fallbackTopic{
	{
		keywords: []string{"quadratic"},
		answer:   "To solve a quadratic equation (ax² + bx + c = 0), you can use the quadratic formula: x = (-b ± √(b² - 4ac)) / 2a. First, identify the values of a, b, and c, then substitute them into the formula. For example, if you have 2x² + 5x - 3 = 0, then a=2, b=5, c=-3. Substituting these values gives you x = (-5 ± √(25 + 24)) / 4 = (-5 ± √49) / 4 = (-5 ± 7) / 4, which simplifies to x = 0.5 or x = -3.",
	},
	{
		keywords: []string{"photosynthesis"},
		answer:   "Photosynthesis is the process by which green plants and some other organisms use sunlight to synthesize foods with carbon dioxide and water. The process can be summarized as: 6CO₂ + 6H₂O + light energy → C₆H₁₂O₆ (glucose) + 6O₂. This occurs in chloroplasts, specifically in the thylakoid membranes. The process has two main stages: light-dependent reactions (which convert light energy to chemical energy) and the Calvin cycle (which uses that energy to fix carbon dioxide and produce glucose).",
	},
	{
		keywords: []string{"essay"},
		answer:   "For a good essay, start with a clear thesis statement, support your arguments with evidence, ensure logical paragraph structure, use transitions between ideas, and conclude by restating your main points. Also, always proofread for grammar and clarity. A strong introduction should hook the reader and provide context for your thesis. Body paragraphs should each focus on a single idea that supports your thesis, with topic sentences that clearly state the main point of each paragraph. The conclusion should synthesize your arguments rather than simply repeating them.",
	},
	{
		keywords: []string{"newton"},
		answer:   "Newton's three laws of motion are: 1) An object at rest stays at rest, and an object in motion stays in motion unless acted upon by an external force (Law of Inertia). 2) Force equals mass times acceleration (F = ma), which means the force acting on an object is equal to the mass of that object times its acceleration. 3) For every action, there is an equal and opposite reaction, meaning that for every force applied, there is an equal force applied in the opposite direction. These laws form the foundation of classical mechanics and explain the relationship between an object and the forces acting upon it.",
	},
	{
		keywords: []string{"cellular respiration"},
		answer:   "Cellular respiration is the process by which cells convert glucose into energy in the form of ATP. The simplified equation is: C₆H₁₂O₆ + 6O₂ → 6CO₂ + 6H₂O + energy (ATP). It occurs in three main stages: glycolysis (in the cytoplasm, which produces a small amount of ATP and pyruvate), the Krebs cycle (in the mitochondrial matrix, which generates electron carriers NADH and FADH2), and the electron transport chain (in the inner mitochondrial membrane, which produces most of the ATP). This process is essential for cellular function as it provides the energy needed for all cellular activities.",
	},
	{
		keywords: []string{"math", "calculus"},
		answer:   "Mathematics is a vast field with many branches. Calculus, one of these branches, deals with rates of change and accumulation. The two main concepts in calculus are derivatives (rates of change) and integrals (accumulation of quantities). Derivatives help us understand how functions change, while integrals help us calculate areas and totals. These concepts are fundamental to physics, engineering, economics, and many other fields.",
	},
	{
		keywords: []string{"history", "world war"},
		answer:   "Historical events are complex and multifaceted, requiring careful analysis of primary and secondary sources. When studying history, it's important to consider multiple perspectives and the broader context of events. For specific historical periods or events, I recommend consulting reliable academic sources and primary documents from the time period you're interested in.",
	},
}

// FallbackAnswer answers a question from the built-in topic table. Unmatched
// questions get a generic offline notice quoting the question's first words.
func FallbackAnswer(question string) string {
	lower := strings.ToLower(question)
	for _, topic := range fallbackTopics {
		for _, kw := range topic.keywords {
			if strings.Contains(lower, kw) {
				return topic.answer
			}
		}
	}

	words := strings.Fields(question)
	if len(words) > 5 {
		words = words[:5]
	}
	return fmt.Sprintf("[Fallback Mode] I'm currently operating in offline mode. Your question about %q is interesting. When the connection to the AI service is restored, I'll be able to provide a more detailed answer. In the meantime, you might want to try a more specific question about topics like math, science, history, or literature.", strings.Join(words, " ")+"...")
}
