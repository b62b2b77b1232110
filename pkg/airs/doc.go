// Package airs classifies security incident text into attack types with one
// of four pre-trained models and exports incident reports.
//
// Quick start:
//
//	a, err := airs.New(airs.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	res, _ := a.Analyze("Multiple SYN packets detected from 10.0.0.7", "xgb")
//	fmt.Println(res.AttackType, res.Severity) // DDoS high
//
// An Analyzer is safe for concurrent use. Create once, reuse across
// requests.
package airs
