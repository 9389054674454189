// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package respond

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/folio/core"
)

// thirdPersonVerbs maps base forms that commonly follow "I" to their third
// person singular form. Past tense and modal verbs need no change.
var thirdPersonVerbs = map[string]string{
	"build":      "builds",
	"create":     "creates",
	"design":     "designs",
	"develop":    "develops",
	"do":         "does",
	"enjoy":      "enjoys",
	"focus":      "focuses",
	"go":         "goes",
	"help":       "helps",
	"implement":  "implements",
	"integrate":  "integrates",
	"know":       "knows",
	"lead":       "leads",
	"like":       "likes",
	"love":       "loves",
	"manage":     "manages",
	"specialize": "specializes",
	"study":      "studies",
	"teach":      "teaches",
	"think":      "thinks",
	"use":        "uses",
	"want":       "wants",
	"work":       "works",
	"write":      "writes",
}

var (
	iAm          = regexp.MustCompile(`\bI\s+am\b`)
	iWas         = regexp.MustCompile(`\bI\s+was\b`)
	iHave        = regexp.MustCompile(`\bI\s+have\b`)
	iContraction = regexp.MustCompile(`\bI['’](m|ve|ll|d)\b`)
	iVerb        = regexp.MustCompile(`\bI\s+([a-z]+)\b`)
	myWord       = regexp.MustCompile(`(?i)\bmy\b`)
	mineWord     = regexp.MustCompile(`(?i)\bmine\b`)
	myselfWord   = regexp.MustCompile(`(?i)\bmyself\b`)
	meWord       = regexp.MustCompile(`(?i)\bme\b`)
	bareI        = regexp.MustCompile(`\bI\b`)
	sentenceHead = regexp.MustCompile(`(?:^|[.!?]\s+)\p{Ll}`)
)

// ThirdPerson rewrites first person references to the given pronouns and
// restores sentence-initial capitals. Rules apply in order, so "I am" is
// handled before the bare "I".
func ThirdPerson(text string, p core.Pronouns) string {
	subject := p.Subject

	text = iAm.ReplaceAllString(text, subject+" is")
	text = iWas.ReplaceAllString(text, subject+" was")
	text = iHave.ReplaceAllString(text, subject+" has")
	text = iContraction.ReplaceAllStringFunc(text, func(m string) string {
		switch iContraction.FindStringSubmatch(m)[1] {
		case "m", "ve":
			return subject + "'s"
		case "ll":
			return subject + "'ll"
		default:
			return subject + "'d"
		}
	})
	text = iVerb.ReplaceAllStringFunc(text, func(m string) string {
		verb := iVerb.FindStringSubmatch(m)[1]
		if conjugated, ok := thirdPersonVerbs[verb]; ok {
			return subject + " " + conjugated
		}
		return m
	})

	text = myselfWord.ReplaceAllStringFunc(text, func(m string) string { return matchCase(m, p.Reflexive) })
	text = mineWord.ReplaceAllStringFunc(text, func(m string) string { return matchCase(m, p.Possessive) })
	text = myWord.ReplaceAllStringFunc(text, func(m string) string { return matchCase(m, p.Possessive) })
	text = meWord.ReplaceAllStringFunc(text, func(m string) string { return matchCase(m, p.Object) })
	text = bareI.ReplaceAllString(text, subject)

	return sentenceHead.ReplaceAllStringFunc(text, upperLast)
}

func matchCase(original, replacement string) string {
	if replacement == "" {
		return original
	}
	r, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(r) {
		return capitalize(replacement)
	}
	return replacement
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func upperLast(s string) string {
	r, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size] + string(unicode.ToUpper(r))
}
