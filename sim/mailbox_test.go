package sim

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mailbox", func() {
	var (
		mailbox *Mailbox
	)

	BeforeEach(func() {
		mailbox = NewMailbox("B", 2)
	})

	newHello := func() *Msg {
		return MsgBuilder{}.WithKind(MsgKindHello).WithSrc("A").Build()
	}

	It("should panic on invalid parameters", func() {
		Expect(func() { NewMailbox("", 1) }).To(Panic())
		Expect(func() { NewMailbox("B", 0) }).To(Panic())
	})

	It("should report name and capacity", func() {
		Expect(mailbox.Name()).To(Equal("B"))
		Expect(mailbox.Capacity()).To(Equal(2))
		Expect(mailbox.Size()).To(Equal(0))
	})

	It("should keep fifo order", func() {
		msg1 := newHello()
		msg2 := newHello()

		Expect(mailbox.Deliver(msg1)).To(BeNil())
		Expect(mailbox.Deliver(msg2)).To(BeNil())
		Expect(mailbox.Size()).To(Equal(2))

		got, ok := mailbox.Retrieve(0)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(msg1))

		got, ok = mailbox.Retrieve(0)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(msg2))
	})

	It("should drop without blocking when full", func() {
		Expect(mailbox.Deliver(newHello())).To(BeNil())
		Expect(mailbox.Deliver(newHello())).To(BeNil())

		dropped := newHello()
		err := mailbox.Deliver(dropped)

		Expect(err).NotTo(BeNil())
		Expect(err.Mailbox).To(Equal("B"))
		Expect(err.Msg).To(BeIdenticalTo(dropped))
		Expect(err.Error()).To(ContainSubstring("HELLO"))
		Expect(mailbox.Size()).To(Equal(2))
	})

	It("should time out when empty", func() {
		start := time.Now()

		msg, ok := mailbox.Retrieve(20 * time.Millisecond)

		Expect(ok).To(BeFalse())
		Expect(msg).To(BeNil())
		Expect(time.Since(start)).To(BeNumerically(">=", 20*time.Millisecond))
	})

	It("should wake up when a message arrives", func() {
		msg := newHello()
		go func() {
			time.Sleep(10 * time.Millisecond)
			mailbox.Deliver(msg)
		}()

		got, ok := mailbox.Retrieve(time.Second)

		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(msg))
	})

	It("should accept exactly capacity messages from concurrent senders", func() {
		mailbox = NewMailbox("B", 10)

		var wg sync.WaitGroup
		var lock sync.Mutex
		drops := 0

		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 5; j++ {
					if mailbox.Deliver(newHello()) != nil {
						lock.Lock()
						drops++
						lock.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Expect(mailbox.Size()).To(Equal(10))
		Expect(drops).To(Equal(10))
	})
})
