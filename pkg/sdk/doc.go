// Package catalogdash provides an embeddable Go client for the catalog dashboard:
// it reads product records from Elasticsearch or a Redis search index, reduces them
// into summary statistics and chart-ready series, and reports backend health.
//
//	client, _ := catalogdash.New(ctx,
//	    catalogdash.WithElasticsearch("http://localhost:9200"),
//	    catalogdash.WithIndex("products"),
//	)
//	defer client.Close()
//
//	dash, err := client.Dashboard(ctx)
//	if errors.Is(err, catalogdash.ErrFetchFailed) {
//	    dash = client.Latest() // keep showing the previous view
//	}
//	fmt.Println(dash.Summary.TotalProducts, client.Health(ctx).Status)
package catalogdash
