package reactive

// Batch defers change notifications until fn returns. Every listener
// affected inside fn, including nested batches, is notified once when the
// outermost batch closes.
//
//	Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func Batch(fn func()) {
	f := currentFrame()
	f.depth++
	defer func() {
		f.depth--
		if f.depth > 0 {
			return
		}
		for _, l := range f.unpark() {
			l.MarkDirty()
		}
	}()
	fn()
}
