package usecase

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

// memStore — общее in-memory состояние фейковых репозиториев.
// fakeTxManager снимает копию перед транзакцией и восстанавливает её при ошибке.
type memStore struct {
	products   map[int64]domain.Product
	categories map[int64]domain.Category
	customers  map[int64]domain.Customer
	promotions map[int64]domain.Promotion
	carts      map[int64]domain.Cart
	lines      map[int64]domain.CartLine
	orders     map[int64]domain.Order
	images     map[int64][]string
	news       map[int64]domain.News
	messages   map[int64]domain.ContactMessage
	outbox     []OutboxEvent
	nextID     int64

	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]domain.Product{},
		categories: map[int64]domain.Category{},
		customers:  map[int64]domain.Customer{},
		promotions: map[int64]domain.Promotion{},
		carts:      map[int64]domain.Cart{},
		lines:      map[int64]domain.CartLine{},
		orders:     map[int64]domain.Order{},
		images:     map[int64][]string{},
		news:       map[int64]domain.News{},
		messages:   map[int64]domain.ContactMessage{},
		nextID:     100,
		failOn:     map[string]error{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) fail(method string) error {
	return s.failOn[method]
}

func (s *memStore) snapshot() *memStore {
	snap := &memStore{
		products:   maps.Clone(s.products),
		categories: maps.Clone(s.categories),
		customers:  maps.Clone(s.customers),
		promotions: maps.Clone(s.promotions),
		carts:      maps.Clone(s.carts),
		lines:      maps.Clone(s.lines),
		orders:     make(map[int64]domain.Order, len(s.orders)),
		images:     maps.Clone(s.images),
		news:       maps.Clone(s.news),
		messages:   maps.Clone(s.messages),
		outbox:     slices.Clone(s.outbox),
		nextID:     s.nextID,
		failOn:     s.failOn,
	}
	for id, o := range s.orders {
		o.Lines = slices.Clone(o.Lines)
		snap.orders[id] = o
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	*s = *snap
}

func (s *memStore) addProduct(name, price string, stock int) domain.Product {
	p := domain.Product{
		ID:       s.id(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addPromotion(p domain.Promotion) domain.Promotion {
	p.ID = s.id()
	s.promotions[p.ID] = p
	return p
}

func (s *memStore) addCustomer(username, address string) domain.Customer {
	c := domain.Customer{ID: s.id(), Username: username, Address: address}
	s.customers[c.ID] = c
	return c
}

func (s *memStore) activeCart(customerID int64) (domain.Cart, bool) {
	for _, c := range s.carts {
		if c.CustomerID == customerID && c.IsActive {
			return c, true
		}
	}
	return domain.Cart{}, false
}

type fakeTxManager struct {
	s     *memStore
	calls int
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	snap := m.s.snapshot()
	if err := fn(ctx); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

// PRODUCTS

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if err := r.s.fail("Product.Create"); err != nil {
		return nil, err
	}
	p.ID = r.s.id()
	r.s.products[p.ID] = *p
	return p, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if _, ok := r.s.products[p.ID]; !ok {
		return nil, e.ErrProductNotFound
	}
	r.s.products[p.ID] = *p
	return p, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, id int64, delta int) error {
	if err := r.s.fail("Product.AdjustStock"); err != nil {
		return err
	}
	p, ok := r.s.products[id]
	if !ok {
		return e.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return e.ErrInsufficientStock
	}
	p.Stock += delta
	r.s.products[id] = p
	return nil
}

func matchesSearch(search string, fields ...string) bool {
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func (r *fakeProductRepo) List(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	var res []domain.Product
	for _, p := range r.s.products {
		if !p.IsActive || (filter.OnlyInStock && p.Stock <= 0) || r.s.categories[p.CategoryID].IsArchived {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, p.Name, p.Description, r.s.categories[p.CategoryID].Name) {
			continue
		}
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *fakeProductRepo) GetProductsInfo(_ context.Context, ids []int64) ([]ProductInfo, error) {
	if err := r.s.fail("Product.GetProductsInfo"); err != nil {
		return nil, err
	}
	var res []ProductInfo
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			res = append(res, NewProductInfo(p.ID, p.Name, r.s.categories[p.CategoryID].Name, p.Price, p.Stock))
		}
	}
	return res, nil
}

func (r *fakeProductRepo) AddImages(_ context.Context, productID int64, keys []string) error {
	if err := r.s.fail("Product.AddImages"); err != nil {
		return err
	}
	r.s.images[productID] = append(slices.Clone(r.s.images[productID]), keys...)
	return nil
}

func (r *fakeProductRepo) Count(context.Context) (int64, error) {
	return int64(len(r.s.products)), nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) ([]string, error) {
	for _, o := range r.s.orders {
		for _, l := range o.Lines {
			if l.ProductID == id {
				return nil, e.ErrProductInUse
			}
		}
	}
	if _, ok := r.s.products[id]; !ok {
		return nil, e.ErrProductNotFound
	}
	for lineID, l := range r.s.lines {
		if l.ProductID == id {
			delete(r.s.lines, lineID)
		}
	}
	keys := r.s.images[id]
	delete(r.s.images, id)
	delete(r.s.products, id)
	return keys, nil
}

// CATEGORIES

type fakeCategoryRepo struct{ s *memStore }

func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return nil, e.ErrAlreadyExists
		}
	}
	c.ID = r.s.id()
	r.s.categories[c.ID] = *c
	return c, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) {
	var res []domain.Category
	for _, c := range r.s.categories {
		if !c.IsArchived {
			res = append(res, c)
		}
	}
	return res, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	stored, ok := r.s.categories[c.ID]
	if !ok || stored.IsArchived {
		return nil, e.ErrCategoryNotFound
	}
	for _, existing := range r.s.categories {
		if existing.ID != c.ID && existing.Name == c.Name {
			return nil, e.ErrAlreadyExists
		}
	}
	r.s.categories[c.ID] = *c
	return c, nil
}

func (r *fakeCategoryRepo) Archive(_ context.Context, id int64) error {
	c, ok := r.s.categories[id]
	if !ok || c.IsArchived {
		return e.ErrCategoryNotFound
	}
	c.IsArchived = true
	r.s.categories[id] = c
	return nil
}

// CUSTOMERS

type fakeCustomerRepo struct{ s *memStore }

func (r *fakeCustomerRepo) Create(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	for _, existing := range r.s.customers {
		if existing.Username == c.Username {
			return nil, e.ErrAlreadyExists
		}
	}
	c.ID = r.s.id()
	r.s.customers[c.ID] = *c
	return c, nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, e.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *fakeCustomerRepo) List(context.Context) ([]domain.Customer, error) {
	return slices.Collect(maps.Values(r.s.customers)), nil
}

func (r *fakeCustomerRepo) Count(context.Context) (int64, error) {
	return int64(len(r.s.customers)), nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	if _, ok := r.s.customers[c.ID]; !ok {
		return nil, e.ErrCustomerNotFound
	}
	for _, existing := range r.s.customers {
		if existing.ID != c.ID && existing.Username == c.Username {
			return nil, e.ErrAlreadyExists
		}
	}
	r.s.customers[c.ID] = *c
	return c, nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.customers[id]; !ok {
		return e.ErrCustomerNotFound
	}
	for _, o := range r.s.orders {
		if o.CustomerID == id {
			return e.ErrCustomerInUse
		}
	}
	for cartID, c := range r.s.carts {
		if c.CustomerID != id {
			continue
		}
		for lineID, l := range r.s.lines {
			if l.CartID == cartID {
				delete(r.s.lines, lineID)
			}
		}
		delete(r.s.carts, cartID)
	}
	delete(r.s.customers, id)
	return nil
}

// PROMOTIONS

type fakePromotionRepo struct{ s *memStore }

func (r *fakePromotionRepo) Create(_ context.Context, p *domain.Promotion) (*domain.Promotion, error) {
	p.ID = r.s.id()
	r.s.promotions[p.ID] = *p
	return p, nil
}

func (r *fakePromotionRepo) Update(_ context.Context, p *domain.Promotion) (*domain.Promotion, error) {
	if _, ok := r.s.promotions[p.ID]; !ok {
		return nil, e.ErrPromotionNotFound
	}
	r.s.promotions[p.ID] = *p
	return p, nil
}

func (r *fakePromotionRepo) GetByID(_ context.Context, id int64) (*domain.Promotion, error) {
	p, ok := r.s.promotions[id]
	if !ok {
		return nil, e.ErrPromotionNotFound
	}
	return &p, nil
}

func (r *fakePromotionRepo) List(context.Context) ([]domain.Promotion, error) {
	res := slices.Collect(maps.Values(r.s.promotions))
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *fakePromotionRepo) ListActive(ctx context.Context, day time.Time) ([]domain.Promotion, error) {
	if err := r.s.fail("Promotion.ListActive"); err != nil {
		return nil, err
	}
	all, _ := r.List(ctx)
	var res []domain.Promotion
	for _, p := range all {
		if p.AppliesOn(day) {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *fakePromotionRepo) SetProducts(_ context.Context, promotionID int64, productIDs []int64) error {
	p, ok := r.s.promotions[promotionID]
	if !ok {
		return e.ErrPromotionNotFound
	}
	p.ProductIDs = slices.Clone(productIDs)
	r.s.promotions[promotionID] = p
	return nil
}

func (r *fakePromotionRepo) CountActive(ctx context.Context, day time.Time) (int64, error) {
	active, err := r.ListActive(ctx, day)
	return int64(len(active)), err
}

func (r *fakePromotionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.promotions[id]; !ok {
		return e.ErrPromotionNotFound
	}
	delete(r.s.promotions, id)
	return nil
}

// NEWS / CONTACT

type fakeNewsRepo struct{ s *memStore }

func (r *fakeNewsRepo) Create(_ context.Context, n *domain.News) (*domain.News, error) {
	n.ID = r.s.id()
	r.s.news[n.ID] = *n
	return n, nil
}

func (r *fakeNewsRepo) Update(_ context.Context, n *domain.News) (*domain.News, error) {
	if _, ok := r.s.news[n.ID]; !ok {
		return nil, e.ErrNewsNotFound
	}
	r.s.news[n.ID] = *n
	return n, nil
}

func (r *fakeNewsRepo) GetByID(_ context.Context, id int64) (*domain.News, error) {
	n, ok := r.s.news[id]
	if !ok {
		return nil, e.ErrNewsNotFound
	}
	return &n, nil
}

func (r *fakeNewsRepo) List(_ context.Context, limit, offset int) ([]domain.News, error) {
	res := slices.Collect(maps.Values(r.s.news))
	sort.Slice(res, func(i, j int) bool {
		if !res[i].PublishedOn.Equal(res[j].PublishedOn) {
			return res[i].PublishedOn.After(res[j].PublishedOn)
		}
		return res[i].ID > res[j].ID
	})
	res = res[min(offset, len(res)):]
	if limit > 0 {
		res = res[:min(limit, len(res))]
	}
	return res, nil
}

func (r *fakeNewsRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.news[id]; !ok {
		return e.ErrNewsNotFound
	}
	delete(r.s.news, id)
	return nil
}

type fakeContactRepo struct{ s *memStore }

func (r *fakeContactRepo) Create(_ context.Context, m *domain.ContactMessage) (*domain.ContactMessage, error) {
	m.ID = r.s.id()
	m.SentAt = testNow
	r.s.messages[m.ID] = *m
	return m, nil
}

func (r *fakeContactRepo) List(_ context.Context, filter ContactFilter) ([]domain.ContactMessage, error) {
	var res []domain.ContactMessage
	for _, m := range r.s.messages {
		if filter.OnlyUnread && m.IsRead {
			continue
		}
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

func (r *fakeContactRepo) SetRead(_ context.Context, id int64, read bool) (*domain.ContactMessage, error) {
	m, ok := r.s.messages[id]
	if !ok {
		return nil, e.ErrMessageNotFound
	}
	m.IsRead = read
	r.s.messages[id] = m
	return &m, nil
}

func (r *fakeContactRepo) CountUnread(ctx context.Context) (int64, error) {
	unread, err := r.List(ctx, ContactFilter{OnlyUnread: true})
	return int64(len(unread)), err
}

// CARTS

type fakeCartRepo struct{ s *memStore }

func (r *fakeCartRepo) GetActiveForUpdate(_ context.Context, customerID int64) (*domain.Cart, error) {
	c, ok := r.s.activeCart(customerID)
	if !ok {
		return nil, e.ErrCartNotFound
	}
	return &c, nil
}

func (r *fakeCartRepo) CreateActive(_ context.Context, customerID int64) (*domain.Cart, error) {
	c := domain.Cart{ID: r.s.id(), CustomerID: customerID, IsActive: true}
	r.s.carts[c.ID] = c
	return &c, nil
}

func (r *fakeCartRepo) ListLines(_ context.Context, cartID int64) ([]domain.CartLine, error) {
	var res []domain.CartLine
	for _, l := range r.s.lines {
		if l.CartID != cartID {
			continue
		}
		p := r.s.products[l.ProductID]
		l.ProductName = p.Name
		l.ListPrice = p.Price
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *fakeCartRepo) UpsertLine(_ context.Context, l *domain.CartLine) (*domain.CartLine, error) {
	if l.ID == 0 {
		l.ID = r.s.id()
	}
	r.s.lines[l.ID] = *l
	return l, nil
}

func (r *fakeCartRepo) DeleteLine(_ context.Context, cartID, lineID int64) error {
	l, ok := r.s.lines[lineID]
	if !ok || l.CartID != cartID {
		return e.ErrCartLineNotFound
	}
	delete(r.s.lines, lineID)
	return nil
}

func (r *fakeCartRepo) UpdateTotals(_ context.Context, cartID int64, totals domain.Totals) error {
	c := r.s.carts[cartID]
	c.ApplyTotals(totals)
	r.s.carts[cartID] = c
	return nil
}

func (r *fakeCartRepo) Consume(_ context.Context, cartID int64) error {
	if err := r.s.fail("Cart.Consume"); err != nil {
		return err
	}
	for id, l := range r.s.lines {
		if l.CartID == cartID {
			delete(r.s.lines, id)
		}
	}
	c := r.s.carts[cartID]
	c.IsActive = false
	r.s.carts[cartID] = c
	return nil
}

// ORDERS

type fakeOrderRepo struct{ s *memStore }

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if err := r.s.fail("Order.Create"); err != nil {
		return nil, err
	}
	o.ID = r.s.id()
	for i := range o.Lines {
		o.Lines[i].ID = r.s.id()
		o.Lines[i].OrderID = o.ID
	}
	stored := *o
	stored.Lines = slices.Clone(o.Lines)
	r.s.orders[o.ID] = stored
	return o, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	o.Lines = slices.Clone(o.Lines)
	return &o, nil
}

func (r *fakeOrderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.Order, error) {
	var res []domain.Order
	for _, o := range r.s.orders {
		if o.CustomerID == customerID {
			res = append(res, o)
		}
	}
	return res, nil
}

func (r *fakeOrderRepo) List(_ context.Context, filter OrderFilter) ([]domain.Order, error) {
	var res []domain.Order
	for _, o := range r.s.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		res = append(res, o)
	}
	return res, nil
}

// UpdateProgress сохраняет только статус, флаги и даты, как настоящий репозиторий.
func (r *fakeOrderRepo) UpdateProgress(_ context.Context, o *domain.Order) error {
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return e.ErrOrderNotFound
	}
	stored.Status = o.Status
	stored.ConfirmedByCustomer = o.ConfirmedByCustomer
	stored.ConfirmedByAdmin = o.ConfirmedByAdmin
	stored.ShippedAt = o.ShippedAt
	stored.DeliveredAt = o.DeliveredAt
	r.s.orders[o.ID] = stored
	return nil
}

func (r *fakeOrderRepo) Count(context.Context) (int64, error) {
	return int64(len(r.s.orders)), nil
}

func (r *fakeOrderRepo) Revenue(context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.s.orders {
		if o.Status != domain.OrderStatusCancelled {
			sum = sum.Add(o.Total)
		}
	}
	return sum, nil
}

// OUTBOX

type fakeOutboxRepo struct{ s *memStore }

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	if err := r.s.fail("Outbox.Create"); err != nil {
		return nil, err
	}
	event.ID = r.s.id()
	r.s.outbox = append(r.s.outbox, *event)
	return event, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) Release(context.Context, int64) error { return nil }

// CACHE / IMAGES / ENCODER

type fakeCache struct {
	products map[int64]ProductInfo
	deleted  []int64
	getErr   error
	setCh    chan []ProductInfo
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: map[int64]ProductInfo{}, setCh: make(chan []ProductInfo, 4)}
}

func (c *fakeCache) GetProducts(_ context.Context, ids []int64) (map[int64]ProductInfo, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	res := make(map[int64]ProductInfo)
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			res[id] = p
		}
	}
	return res, nil
}

func (c *fakeCache) SetProducts(_ context.Context, products []ProductInfo) error {
	c.setCh <- products
	return nil
}

func (c *fakeCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.deleted = append(c.deleted, ids...)
	return nil
}

type fakeImages struct {
	uploaded []string
	cleaned  []string
	err      error
}

func (f *fakeImages) UploadImages(_ context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	if f.err != nil {
		return nil, f.err
	}
	keys := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		keys = append(keys, "products/"+img.Name)
	}
	f.uploaded = append(f.uploaded, keys...)
	return NewUploadImagesRes(keys), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.cleaned = append(f.cleaned, keys...)
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(event *OrderEvent) ([]byte, error) {
	return []byte(string(event.Type) + ":" + event.Total.StringFixed(2)), nil
}
