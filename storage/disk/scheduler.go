package disk

import "sync"

// Request describes one pending page I/O.
type Request struct {
	PageId PageId
	Data   []byte // PageSize bytes; populated by the caller for writes
	Write  bool
	RespCh chan Response
}

// Response is delivered on a Request's RespCh once the I/O completes.
type Response struct {
	Data    []byte
	Success bool
	Err     error
}

// NewRequest builds a read or write request with a fresh response
// channel.
func NewRequest(id PageId, data []byte, write bool) Request {
	return Request{
		PageId: id,
		Data:   data,
		Write:  write,
		RespCh: make(chan Response, 1),
	}
}

// Scheduler serializes reads and writes against one BlobFile through a
// worker goroutine per page currently in flight, so the buffer pool never
// blocks directly on file I/O.
type Scheduler struct {
	file  *BlobFile
	reqCh chan Request

	mu    sync.Mutex
	queue map[PageId]chan Request
}

// NewScheduler starts the dispatch goroutine for file.
func NewScheduler(file *BlobFile) *Scheduler {
	s := &Scheduler{
		file:  file,
		reqCh: make(chan Request, 256),
		queue: make(map[PageId]chan Request),
	}
	go s.dispatch()
	return s
}

// Schedule enqueues req and returns its response channel.
func (s *Scheduler) Schedule(req Request) <-chan Response {
	s.reqCh <- req
	return req.RespCh
}

func (s *Scheduler) dispatch() {
	for req := range s.reqCh {
		s.mu.Lock()
		pageCh, ok := s.queue[req.PageId]
		if !ok {
			pageCh = make(chan Request, 16)
			s.queue[req.PageId] = pageCh
		}
		s.mu.Unlock()

		pageCh <- req

		if !ok {
			go s.worker(req.PageId, pageCh)
		}
	}
}

func (s *Scheduler) worker(id PageId, queue chan Request) {
	for {
		select {
		case req := <-queue:
			s.handle(req)
		default:
			s.mu.Lock()
			delete(s.queue, id)
			s.mu.Unlock()
			return
		}
	}
}

func (s *Scheduler) handle(req Request) {
	if req.Write {
		err := s.file.WriteAt(req.PageId, req.Data)
		req.RespCh <- Response{Success: err == nil, Err: err}
		return
	}

	buf := make([]byte, PageSize)
	err := s.file.ReadAt(req.PageId, buf)
	req.RespCh <- Response{Data: buf, Success: err == nil, Err: err}
}
