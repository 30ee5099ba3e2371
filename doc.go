// Package dana provides a hybrid retrieval and question-answering engine for
// Persian brokerage support desks.
//
// Dana answers customer questions from an indexed passage corpus. Retrieval
// is hybrid: a recall stage blends embedding similarity with a capped lexical
// score, and a precision rerank adds an unbounded bonus for verbatim numeric
// codes so exact error-code matches always surface first. Answers are
// generated strictly from the retrieved passages; when nothing clears the
// confidence gate, a multi-query fallback rephrases the question before the
// engine admits it has no information.
//
// # Basic Usage
//
// Create a client with a corpus, a completion client, and an embedder:
//
//	store, err := corpus.NewStore("./dana_db")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	llmClient, err := llm.NewOpenAIClient("your-api-key", llm.Config{Model: "gpt-4o-mini"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	embedderClient, err := embedder.NewOpenAIClient("your-api-key", embedder.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := dana.NewClient(store, llmClient, embedderClient, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// # Asking Questions
//
//	result, err := client.Ask(ctx, types.Query{Text: "چطور رمز عبور را بازیابی کنم؟"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Text)
//
// Conversational follow-ups pass the recent history so the engine can turn
// elliptical questions into standalone search queries:
//
//	result, err = client.Ask(ctx, types.Query{
//		Text:    "چرا کار نمی‌کند؟",
//		History: previousTurns,
//	})
//
// # Evaluation and Tuning
//
// A benchmark suite of question/ground-truth pairs drives both evaluation and
// automatic parameter tuning:
//
//	cases, _ := eval.LoadCases("benchmark.yaml")
//	outcome, err := client.Tune(ctx, cases)
package dana
