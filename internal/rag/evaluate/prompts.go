package evaluate

const judgeSystemPrompt = "You are a strict evaluator of question-answering systems. " +
	"You respond with compact JSON only, no prose and no markdown fences."

// faithfulnessPrompt asks the judge to decompose the answer into atomic
// statements and verify each one against the retrieved context.
const faithfulnessPrompt = `Given a context and an answer, break the answer into simple standalone statements.
For each statement decide whether it can be directly inferred from the context.

Context:
%s

Answer:
%s

Respond with JSON of the form {"total": <number of statements>, "supported": <number of statements inferable from the context>}.`

// relevancyPrompt drives the reverse-question generation step: questions are
// regenerated from the answer and later compared to the original question.
const relevancyPrompt = `Generate %d concise questions that the following answer would directly and completely answer.

Answer:
%s

Respond with JSON of the form {"questions": ["...", "..."]}.`
