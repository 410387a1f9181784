// Package diff computes a side-by-side comparison of two texts.
//
// The pipeline runs strictly forward:
//   - SplitLines turns each text into lines ("\n" separated; a trailing "\n" does not add an empty line).
//   - LineScript aligns the two line sequences into common, removed and added runs (Myers, via go-diff).
//   - The classifier walks the runs, pairs an adjacent removed run with an added run position by position,
//     and numbers each side independently starting at 1+LinesOffset.
//   - WordDiff refines every paired line with the tokenizer selected by Options.CompareMethod.
//   - BlockStarts records the first index of every maximal run of changed records.
//
// Getting a result:
//
//	res, err := diff.Compute(oldText, newText, diff.Options{CompareMethod: diff.MethodWords})
//	for _, rec := range res.Lines {
//		switch v := rec.Right.Value.(type) {
//		case diff.Text:
//			fmt.Println(string(v))
//		case diff.Tokens:
//			fmt.Println(v.String())
//		}
//	}
//
// Compute never mutates its inputs and keeps no state between calls, so it is safe to call concurrently.
// A Result should be treated as read-only; use Result.Blocks to walk block starts with a private cursor.
package diff
