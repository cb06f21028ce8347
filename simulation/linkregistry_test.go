package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LinkRegistry", func() {
	var r *LinkRegistry

	BeforeEach(func() {
		r = NewLinkRegistry()
		r.add("B", "A")
		r.add("B", "C")
	})

	It("should ignore the order of the names", func() {
		up, found := r.IsUp("A", "B")
		Expect(found).To(BeTrue())
		Expect(up).To(BeTrue())

		up, found = r.IsUp("B", "A")
		Expect(found).To(BeTrue())
		Expect(up).To(BeTrue())
	})

	It("should not know links that were never added", func() {
		_, found := r.IsUp("A", "C")
		Expect(found).To(BeFalse())

		Expect(r.set("A", "C", false)).To(BeFalse())
		_, found = r.IsUp("A", "C")
		Expect(found).To(BeFalse())
	})

	It("should keep entries when links go down", func() {
		Expect(r.set("C", "B", false)).To(BeTrue())

		Expect(r.Links()).To(Equal([]LinkState{
			{A: "A", B: "B", Up: true},
			{A: "B", B: "C", Up: false},
		}))
	})
})
