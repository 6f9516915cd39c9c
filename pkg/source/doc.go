// Package source loads HTML documents from local files, standard input and
// S3 buckets.
//
//	l := &source.Loader{S3: source.NewS3Client(source.S3Config{Region: "eu-west-1"})}
//	doc, err := l.Load(ctx, "s3://pages/counter.html")
package source
