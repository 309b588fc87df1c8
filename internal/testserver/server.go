package testserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"gearhub-client/internal/resources"
	"gearhub-client/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Token is the bearer token the fake backend issues on login.
const Token = "test-token-gearhub"

// Server is an in-process stand-in for the marketplace backend. It
// speaks the same inconsistent envelopes the real one does: coupons
// and notifications come keyed under their plural, plans come as
// {data: [...]}, roles come as a bare array.
type Server struct {
	HTTP *httptest.Server

	// ListDelay slows list endpoints down so request-coalescing tests
	// have a window to race in.
	ListDelay time.Duration

	mu            sync.Mutex
	coupons       []resources.Coupon
	nextCouponID  int64
	plans         []resources.Plan
	roles         []resources.Role
	categories    []resources.Category
	subcategories []resources.Subcategory
	carMakes      []resources.CarMake
	carModels     []resources.CarModel
	dtcCodes      []resources.DTCCode
	vendors       []resources.Vendor
	mechanics     []resources.Mechanic
	centers       []resources.ServiceCenter
	notifications []resources.Notification
	nextNotifID   int64
	subStatuses   []string
	failStatus    int
	nextSubID     int64
	requests      map[string]int
	lastAuth      string
	conns         []*websocket.Conn
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		nextCouponID: 1,
		nextNotifID:  1,
		nextSubID:    1,
		requests:     make(map[string]int),
		plans: []resources.Plan{
			{ID: 1, Name: "Vendor Basic", Price: 499, Currency: "INR", BillingCycle: "monthly"},
			{ID: 2, Name: "Vendor Pro", Price: 1499, Currency: "INR", BillingCycle: "monthly"},
		},
		roles: []resources.Role{
			{ID: 1, Name: "admin"},
			{ID: 2, Name: "vendor"},
			{ID: 3, Name: "mechanic"},
			{ID: 4, Name: "customer"},
		},
		categories: []resources.Category{
			{ID: 1, Name: "Engine", Slug: "engine"},
			{ID: 3, Name: "Brakes", Slug: "brakes"},
		},
		subcategories: []resources.Subcategory{
			{ID: 10, Name: "Pads", CategoryID: 3},
			{ID: 11, Name: "Discs", CategoryID: 3},
			{ID: 12, Name: "Filters", CategoryID: 1},
		},
		carMakes: []resources.CarMake{
			{ID: 1, Name: "Maruti Suzuki"},
			{ID: 2, Name: "Tata"},
		},
		carModels: []resources.CarModel{
			{ID: 21, Name: "Swift", MakeID: 1, Year: 2021},
			{ID: 22, Name: "Nexon", MakeID: 2, Year: 2022},
		},
		dtcCodes: []resources.DTCCode{
			{ID: 1, Code: "P0301", Title: "Cylinder 1 Misfire", Severity: "high"},
			{ID: 2, Code: "P0420", Title: "Catalyst Efficiency Below Threshold", Severity: "medium"},
			{ID: 3, Code: "C1201", Title: "ABS Control System Malfunction", Severity: "high"},
		},
		vendors: []resources.Vendor{
			{ID: 1, Name: "Sharma Auto Spares", Email: "sales@sharmaauto.test", Status: "approved"},
		},
		mechanics: []resources.Mechanic{
			{ID: 1, Name: "R. Iyer", Specialty: "engine", Rating: 4.7},
		},
		centers: []resources.ServiceCenter{
			{ID: 1, Name: "GearHub Service Andheri", Address: "Andheri East, Mumbai"},
		},
	}

	engine := gin.New()
	engine.Use(s.track)

	engine.POST("/auth/login", s.login)

	engine.GET("/coupons", s.listCoupons)
	engine.GET("/coupons/:id", s.getCoupon)
	engine.POST("/coupons", s.createCoupon)
	engine.PUT("/coupons/:id", s.updateCoupon)
	engine.DELETE("/coupons/:id", s.deleteCoupon)

	engine.GET("/plans", s.listPlans)
	engine.GET("/roles", s.listRoles)

	engine.GET("/dtc", s.listDTCCodes)
	engine.GET("/vendors", s.listVendors)
	engine.GET("/mechanics", s.listMechanics)
	engine.GET("/service_centers", s.listServiceCenters)

	engine.GET("/categories", s.listCategories)
	engine.GET("/subcategories", s.listSubcategories)
	engine.GET("/car_makes", s.listCarMakes)
	engine.GET("/car_models", s.listCarModels)

	engine.GET("/notifications", s.listNotifications)
	engine.GET("/notifications/unread", s.unreadNotifications)
	engine.PATCH("/notifications/:id/read", s.markNotificationRead)
	engine.POST("/notifications/read_all", s.markAllNotificationsRead)
	engine.DELETE("/notifications/:id", s.deleteNotification)

	engine.POST("/subscriptions", s.createSubscription)
	engine.GET("/subscriptions/:id/status", s.subscriptionStatus)

	engine.GET("/socket", s.socket)

	s.HTTP = httptest.NewServer(engine)
	return s
}

func (s *Server) Close() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	s.HTTP.Close()
}

// URL is the REST base URL.
func (s *Server) URL() string { return s.HTTP.URL }

// SocketURL is the push channel endpoint.
func (s *Server) SocketURL() string {
	return "ws" + strings.TrimPrefix(s.HTTP.URL, "http") + "/socket"
}

// RequestCount reports how many times "METHOD /path" was served.
func (s *Server) RequestCount(methodAndPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[methodAndPath]
}

// LastAuthHeader returns the Authorization header of the most recent
// request.
func (s *Server) LastAuthHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

// SeedNotifications replaces the notification fixtures.
func (s *Server) SeedNotifications(items []resources.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = items
	for _, n := range items {
		if n.ID >= s.nextNotifID {
			s.nextNotifID = n.ID + 1
		}
	}
}

// ScriptSubscriptionStatuses queues the status values the poller will
// observe, one per poll; the last value is sticky.
func (s *Server) ScriptSubscriptionStatuses(statuses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subStatuses = statuses
}

// FailNextStatusRequests makes the next n status polls return 500,
// for exercising the poller's retry-on-error behavior.
func (s *Server) FailNextStatusRequests(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = n
}

// Push emits a newNotification event to every connected socket and
// appends it to the server-side list, unread.
func (s *Server) Push(n resources.Notification) {
	s.mu.Lock()
	if n.ID == 0 {
		n.ID = s.nextNotifID
		s.nextNotifID++
	}
	s.notifications = append([]resources.Notification{n}, s.notifications...)
	conns := make([]*websocket.Conn, len(s.conns))
	copy(conns, s.conns)
	s.mu.Unlock()

	payload, _ := json.Marshal(n)
	msg, _ := json.Marshal(map[string]json.RawMessage{
		"event": json.RawMessage(`"newNotification"`),
		"data":  payload,
	})
	for _, c := range conns {
		c.WriteMessage(websocket.TextMessage, msg)
	}
}

// --- middleware ---

func (s *Server) track(c *gin.Context) {
	s.mu.Lock()
	s.requests[c.Request.Method+" "+c.FullPath()]++
	s.lastAuth = c.GetHeader("Authorization")
	s.mu.Unlock()
	c.Next()
}

// --- handlers ---

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":  false,
			"message":  "validation failed",
			"messages": []string{"email and password are required"},
		})
		return
	}
	if req.Password == "wrong" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "invalid credentials",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "login successful",
		"data": gin.H{
			"token": Token,
			"user": session.User{
				ID:    7,
				Email: req.Email,
				Role:  session.Role{Name: "vendor"},
			},
		},
	})
}

func (s *Server) listCoupons(c *gin.Context) {
	if s.ListDelay > 0 {
		time.Sleep(s.ListDelay)
	}
	s.mu.Lock()
	items := make([]resources.Coupon, len(s.coupons))
	copy(items, s.coupons)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"coupons": items, "total": len(items)},
	})
}

func (s *Server) getCoupon(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, coupon := range s.coupons {
		if coupon.ID == id {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": coupon})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "coupon not found"})
}

func (s *Server) createCoupon(c *gin.Context) {
	var input resources.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":  false,
			"message":  "validation failed",
			"messages": []string{"code is required"},
		})
		return
	}
	s.mu.Lock()
	coupon := resources.Coupon{
		ID:           s.nextCouponID,
		Code:         input.Code,
		Discount:     input.Discount,
		DiscountType: input.DiscountType,
		ExpiresAt:    input.ExpiresAt,
		Active:       input.Active,
	}
	s.nextCouponID++
	s.coupons = append(s.coupons, coupon)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": coupon})
}

func (s *Server) updateCoupon(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	var input resources.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.coupons {
		if s.coupons[i].ID == id {
			s.coupons[i].Code = input.Code
			s.coupons[i].Discount = input.Discount
			s.coupons[i].DiscountType = input.DiscountType
			s.coupons[i].Active = input.Active
			c.JSON(http.StatusOK, gin.H{"success": true, "data": s.coupons[i]})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "coupon not found"})
}

func (s *Server) deleteCoupon(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.coupons {
		if s.coupons[i].ID == id {
			s.coupons = append(s.coupons[:i], s.coupons[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "coupon deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "coupon not found"})
}

func (s *Server) listPlans(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.Plan, len(s.plans))
	copy(items, s.plans)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func (s *Server) listRoles(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.Role, len(s.roles))
	copy(items, s.roles)
	s.mu.Unlock()
	c.JSON(http.StatusOK, items)
}

func (s *Server) listDTCCodes(c *gin.Context) {
	if s.ListDelay > 0 {
		time.Sleep(s.ListDelay)
	}
	q := strings.ToUpper(c.Query("q"))
	s.mu.Lock()
	items := []resources.DTCCode{}
	for _, d := range s.dtcCodes {
		if q == "" || strings.HasPrefix(d.Code, q) {
			items = append(items, d)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"dtc_codes": items, "total": len(items)},
	})
}

func (s *Server) listVendors(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.Vendor, len(s.vendors))
	copy(items, s.vendors)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"vendors": items, "total": len(items)},
	})
}

func (s *Server) listMechanics(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.Mechanic, len(s.mechanics))
	copy(items, s.mechanics)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func (s *Server) listServiceCenters(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.ServiceCenter, len(s.centers))
	copy(items, s.centers)
	s.mu.Unlock()
	c.JSON(http.StatusOK, items)
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.Category, len(s.categories))
	copy(items, s.categories)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"categories": items, "total": len(items)},
	})
}

func (s *Server) listSubcategories(c *gin.Context) {
	filter := c.Query("category_id")
	s.mu.Lock()
	items := []resources.Subcategory{}
	for _, sc := range s.subcategories {
		if filter == "" || strconv.FormatInt(sc.CategoryID, 10) == filter {
			items = append(items, sc)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"subcategories": items, "total": len(items)},
	})
}

func (s *Server) listCarMakes(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.CarMake, len(s.carMakes))
	copy(items, s.carMakes)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func (s *Server) listCarModels(c *gin.Context) {
	filter := c.Query("car_make_id")
	s.mu.Lock()
	items := []resources.CarModel{}
	for _, m := range s.carModels {
		if filter == "" || strconv.FormatInt(m.MakeID, 10) == filter {
			items = append(items, m)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func (s *Server) listNotifications(c *gin.Context) {
	s.mu.Lock()
	items := make([]resources.Notification, len(s.notifications))
	copy(items, s.notifications)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"notifications": items, "total": len(items)},
	})
}

func (s *Server) unreadNotifications(c *gin.Context) {
	s.mu.Lock()
	var items []resources.Notification
	for _, n := range s.notifications {
		if !n.IsRead {
			items = append(items, n)
		}
	}
	s.mu.Unlock()
	if items == nil {
		items = []resources.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification marked read"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "notification not found"})
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "all notifications marked read"})
}

func (s *Server) deleteNotification(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "notification not found"})
}

func (s *Server) createSubscription(c *gin.Context) {
	var req struct {
		PlanID int64 `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PlanID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "plan_id is required"})
		return
	}
	s.mu.Lock()
	sub := resources.Subscription{
		ID:                    s.nextSubID,
		PlanID:                req.PlanID,
		Status:                "created",
		GatewaySubscriptionID: "sub_gw_" + strconv.FormatInt(s.nextSubID, 10),
		GatewayToken:          "tok_gw_" + strconv.FormatInt(s.nextSubID, 10),
		ShortURL:              "https://rzp.test/checkout/" + strconv.FormatInt(s.nextSubID, 10),
	}
	s.nextSubID++
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": sub})
}

func (s *Server) subscriptionStatus(c *gin.Context) {
	s.mu.Lock()
	if s.failStatus > 0 {
		s.failStatus--
		s.mu.Unlock()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "status backend unavailable"})
		return
	}
	status := "created"
	if len(s.subStatuses) > 0 {
		status = s.subStatuses[0]
		if len(s.subStatuses) > 1 {
			s.subStatuses = s.subStatuses[1:]
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"status": status}})
}

func (s *Server) socket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	// Drain the join message and any pings; the fake server never
	// reads anything else.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
