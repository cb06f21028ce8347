package monitoring

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/netsim/node"
	"github.com/sarchlab/netsim/sim"
	"github.com/sarchlab/netsim/simulation"
	"github.com/sarchlab/netsim/topology"
)

func buildNode(name string, capacity, queued int) *node.Node {
	mb := sim.NewMailbox(name, capacity)
	for i := 0; i < queued; i++ {
		mb.Deliver(sim.MsgBuilder{}.WithKind("DATA").WithSrc("X").Build())
	}

	return node.MakeBuilder().WithMailbox(mb).Build(name)
}

var _ = Describe("Monitor", func() {
	var (
		mockCtrl   *gomock.Controller
		controller *MockController
		m          *Monitor
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		controller = NewMockController(mockCtrl)
		m = NewMonitor()
		m.RegisterSimulation(controller)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	serve := func(method, url string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, url, nil)
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, req)

		return rec
	}

	It("should list nodes", func() {
		controller.EXPECT().Nodes().Return([]*node.Node{
			buildNode("A", 10, 0),
			buildNode("B", 10, 0),
		})

		rec := serve(http.MethodGet, "/api/nodes")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["A","B"]`))
	})

	It("should describe a node", func() {
		controller.EXPECT().Node("A").Return(buildNode("A", 10, 0), true)

		rec := serve(http.MethodGet, "/api/node/A")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should return 404 for unknown nodes", func() {
		controller.EXPECT().Node("Z").Return(nil, false)

		rec := serve(http.MethodGet, "/api/node/Z")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should list links", func() {
		controller.EXPECT().Links().Return([]simulation.LinkState{
			{A: "A", B: "B", Up: true},
			{A: "B", B: "C", Up: false},
		})

		rec := serve(http.MethodGet, "/api/links")

		Expect(rec.Body.String()).To(MatchJSON(
			`[{"a":"A","b":"B","up":true},{"a":"B","b":"C","up":false}]`))
	})

	Context("when listing mailboxes", func() {
		BeforeEach(func() {
			controller.EXPECT().Nodes().Return([]*node.Node{
				buildNode("A", 10, 5),
				buildNode("B", 100, 20),
				buildNode("C", 10, 0),
			}).AnyTimes()
		})

		It("should sort by percent by default", func() {
			rec := serve(http.MethodGet, "/api/mailboxes")

			Expect(rec.Body.String()).To(MatchJSON(`[
				{"mailbox":"A","level":5,"cap":10},
				{"mailbox":"B","level":20,"cap":100},
				{"mailbox":"C","level":0,"cap":10}
			]`))
		})

		It("should sort by level", func() {
			rec := serve(http.MethodGet, "/api/mailboxes?sort=level&limit=1")

			Expect(rec.Body.String()).To(MatchJSON(
				`[{"mailbox":"B","level":20,"cap":100}]`))
		})

		It("should page", func() {
			rec := serve(http.MethodGet,
				"/api/mailboxes?sort=level&offset=1&limit=5")

			Expect(rec.Body.String()).To(MatchJSON(`[
				{"mailbox":"A","level":5,"cap":10},
				{"mailbox":"C","level":0,"cap":10}
			]`))

			rec = serve(http.MethodGet, "/api/mailboxes?offset=7")
			Expect(rec.Body.String()).To(MatchJSON(`[]`))
		})

		It("should reject bad parameters", func() {
			rec := serve(http.MethodGet, "/api/mailboxes?sort=name")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			rec = serve(http.MethodGet, "/api/mailboxes?limit=x")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			rec = serve(http.MethodGet, "/api/mailboxes?offset=-1")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	It("should pause and resume", func() {
		controller.EXPECT().Pause()
		controller.EXPECT().Resume()
		controller.EXPECT().IsPaused().Return(true)

		rec := serve(http.MethodPost, "/api/pause")
		Expect(rec.Body.String()).To(MatchJSON(`{"paused":true}`))

		rec = serve(http.MethodGet, "/api/status")
		Expect(rec.Body.String()).To(MatchJSON(`{"paused":true}`))

		rec = serve(http.MethodPost, "/api/resume")
		Expect(rec.Body.String()).To(MatchJSON(`{"paused":false}`))
	})

	It("should only pause on POST", func() {
		rec := serve(http.MethodGet, "/api/pause")

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should fail and restore links", func() {
		controller.EXPECT().FailLink("A", "B", true).Return(nil)
		controller.EXPECT().FailLink("A", "B", false).Return(nil)

		rec := serve(http.MethodPost, "/api/link/A/B/down")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"a":"A","b":"B","up":false}`))

		rec = serve(http.MethodPost, "/api/link/A/B/up")
		Expect(rec.Body.String()).To(MatchJSON(`{"a":"A","b":"B","up":true}`))
	})

	It("should return 404 for unknown links", func() {
		controller.EXPECT().FailLink("A", "C", true).
			Return(fmt.Errorf("%w: A-C", simulation.ErrNoSuchLink))

		rec := serve(http.MethodPost, "/api/link/A/C/down")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should not accept other link states", func() {
		rec := serve(http.MethodPost, "/api/link/A/B/flap")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Simulation", 10)
		bar.Advance(3)
		bar.Advance(30)
		done := m.CreateProgressBar("Done", 1)
		m.CompleteProgressBar(done)

		rec := serve(http.MethodGet, "/api/progress")

		var bars []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Simulation"))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 10))
		Expect(bar.Finished()).To(Equal(uint64(10)))
	})

	It("should report resources", func() {
		rec := serve(http.MethodGet, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"memory_size"`))
	})
})

var _ = Describe("Monitor server", func() {
	It("should serve a simulation", func() {
		g := topology.NewGraph()
		g.AddLink("A", "B", topology.LinkAttrs{})

		s, err := simulation.MakeBuilder().Build(g)
		Expect(err).NotTo(HaveOccurred())

		m := NewMonitor().WithPortNumber(80)
		m.RegisterSimulation(s)

		addr, err := m.StartServer()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Get(addr + "/api/links")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(MatchJSON(`[{"a":"A","b":"B","up":true}]`))

		rsp, err = http.Post(addr+"/api/link/A/B/down", "", nil)
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()

		up, _ := s.LinkRegistry().IsUp("A", "B")
		Expect(up).To(BeFalse())
	})
})
