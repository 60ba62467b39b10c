// Package lightarchive embeds the Light Archive content store in a Go program.
//
// The client talks to the same backends as the server (SQLite, MongoDB, Redis or
// Valkey) and applies the same validation, keyword search and related-content
// scoring, without going through HTTP.
//
//	client, _ := lightarchive.New(ctx, lightarchive.WithSQLite("data/lightarchive.db"))
//	defer client.Close()
//
//	a, _ := client.Archives().Create(ctx, lightarchive.ArchiveInput{
//	    Title:    "AI Chatbot",
//	    Content:  "<p>...</p>",
//	    Category: lightarchive.CategoryProject,
//	    Tags:     []string{"AI", "NLP"},
//	})
//	hits, _ := client.Archives().Search(ctx, "chatbot", lightarchive.SearchOptions{Limit: 10})
//	rel, _ := client.Archives().Related(ctx, a.ID, 4)
package lightarchive
