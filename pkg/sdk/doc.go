// Package shopsense embeds the shopping recommendation pipeline in-process.
//
// A Client interprets a free-text request, acquires candidate listings,
// structures their reviews and ranks them into a narrated recommendation.
// Without WithBrowser every acquisition is served from the built-in
// synthetic catalog, which needs no network access.
//
//	client, _ := shopsense.New()
//	defer client.Close()
//
//	run := client.Run(ctx, "samsung phone under 20000 with good camera")
//	fmt.Println(run.Recommendation.Text)
//
// The stages can also be driven one at a time:
//
//	q := client.Interpret(ctx, "laptop under 60k for coding")
//	products, _ := client.Acquire(ctx, q)
//	for i := range products {
//	    products[i].StructuredReviews, _ = client.Structure(ctx, products[i])
//	}
//	rec, _ := client.Recommend(ctx, q, products)
package shopsense
