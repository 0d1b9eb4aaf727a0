package augment_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/augment"
)

var _ = Describe("ExtractQuery", func() {
	const trigger = "academic_search"

	It("reports no match when the trigger is absent", func() {
		query, ok := augment.ExtractQuery("tell me about quantum computing", trigger)
		Expect(ok).To(BeFalse())
		Expect(query).To(BeEmpty())
	})

	It("extracts the query after a colon separator", func() {
		query, ok := augment.ExtractQuery("academic_search: quantum computing", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("quantum computing"))
	})

	It("extracts the query after whitespace", func() {
		query, ok := augment.ExtractQuery("academic_search quantum computing", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("quantum computing"))
	})

	It("treats mixed colon and whitespace as one separator run", func() {
		query, ok := augment.ExtractQuery("academic_search:   neural networks", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("neural networks"))
	})

	It("captures only up to the end of the line", func() {
		query, ok := augment.ExtractQuery("academic_search: graph theory\nand explain it simply", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("graph theory"))
	})

	It("matches the trigger case-insensitively", func() {
		query, ok := augment.ExtractQuery("Academic_Search: dark matter", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("dark matter"))
	})

	It("finds the trigger mid-sentence", func() {
		query, ok := augment.ExtractQuery("please run academic_search: category theory", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("category theory"))
	})

	It("crosses a newline separator to reach the query", func() {
		query, ok := augment.ExtractQuery("academic_search\ntransformer models", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("transformer models"))
	})

	It("captures the remainder even mid-sentence", func() {
		query, ok := augment.ExtractQuery("what does academic_search do", trigger)
		Expect(ok).To(BeTrue())
		Expect(query).To(Equal("do"))
	})

	Context("with multibyte content around the trigger", func() {
		It("extracts after a prefix whose runes grow when lowercased", func() {
			content := strings.Repeat("Ⱥ", 20) + " academic_search: x"
			query, ok := augment.ExtractQuery(content, trigger)
			Expect(ok).To(BeTrue())
			Expect(query).To(Equal("x"))
		})

		It("extracts after a prefix whose runes shrink when lowercased", func() {
			content := strings.Repeat("İ", 5) + " academic_search: spin glasses"
			query, ok := augment.ExtractQuery(content, trigger)
			Expect(ok).To(BeTrue())
			Expect(query).To(Equal("spin glasses"))
		})

		It("strips the trigger intact when surrounded by multibyte text", func() {
			content := "ȺȺ academic_search"
			query, ok := augment.ExtractQuery(content, trigger)
			Expect(ok).To(BeTrue())
			Expect(query).To(Equal("ȺȺ"))
		})

		It("consumes non-ASCII whitespace as a separator", func() {
			query, ok := augment.ExtractQuery("academic_search ising models", trigger)
			Expect(ok).To(BeTrue())
			Expect(query).To(Equal("ising models"))
		})

		It("keeps a multibyte query intact", func() {
			query, ok := augment.ExtractQuery("academic_search: schrödinger Ångström", trigger)
			Expect(ok).To(BeTrue())
			Expect(query).To(Equal("schrödinger Ångström"))
		})
	})

	Context("when the pattern does not yield a query", func() {
		It("strips a bare trailing trigger", func() {
			query, ok := augment.ExtractQuery("find papers on LLMs academic_search", trigger)
			Expect(ok).To(BeTrue())
			Expect(query).To(Equal("find papers on LLMs"))
		})

		It("strips every occurrence case-insensitively", func() {
			query, ok := augment.ExtractQuery("ACADEMIC_SEARCHacademic_search", trigger)
			Expect(ok).To(BeTrue())
			Expect(query).To(BeEmpty())
		})
	})
})
