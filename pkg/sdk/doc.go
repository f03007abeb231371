// Package mindrecall embeds the mindrecall retrieval engine in a Go program
// without running the HTTP server.
//
// Mood entries are stored in Redis; each one is also embedded and indexed in
// the user's vector namespace. Context retrieval merges a BM25 ranking of the
// user's recent entries with the nearest stored vectors and never fails: a
// broken branch simply contributes nothing.
//
//	client, _ := mindrecall.New(ctx,
//	    mindrecall.WithRedis("localhost:6379", ""),
//	    mindrecall.WithEmbedder(myEmbedder),
//	    mindrecall.WithInMemoryIndex(),
//	)
//	defer client.Close()
//
//	_, _ = client.Moods("42").Log(ctx, "anxious", "exam tomorrow")
//	bundle := client.Context(ctx, "42", "can't sleep")
//	for _, p := range bundle.Passages {
//	    fmt.Println(p)
//	}
package mindrecall
