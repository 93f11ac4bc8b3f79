// Package forum holds the community board: posts with like/dislike votes,
// kept in memory for the lifetime of the process.
package forum

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// Vote is a voter's choice on a post. The zero value means no vote.
type Vote string

const (
	VoteNone    Vote = ""
	VoteLike    Vote = "like"
	VoteDislike Vote = "dislike"
)

// Order selects how List sorts posts.
type Order string

const (
	// OrderTrending sorts by likes minus dislikes, highest first.
	OrderTrending Order = "trending"
	// OrderCurrent sorts newest first.
	OrderCurrent Order = "current"
)

var (
	ErrEmptyContent = errors.New("post content is empty")
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidVote  = errors.New("vote must be like or dislike")
	ErrInvalidOrder = errors.New("sort must be trending or current")
)

// Post is a snapshot of a post as seen by one voter.
type Post struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	Timestamp time.Time `json:"timestamp"`
	UserVote  Vote      `json:"user_vote"`
}

type post struct {
	id        int64
	content   string
	likes     int
	dislikes  int
	timestamp time.Time
	votes     map[string]Vote
}

// Board is safe for concurrent use.
type Board struct {
	mu     sync.Mutex
	posts  []*post // newest first
	nextID int64
	now    func() time.Time
}

// NewBoard returns an empty board. A nil now uses time.Now.
func NewBoard(now func() time.Time) *Board {
	if now == nil {
		now = time.Now
	}
	return &Board{nextID: 1, now: now}
}

// NewSeededBoard returns a board holding the two launch posts.
func NewSeededBoard(now func() time.Time) *Board {
	b := NewBoard(now)
	b.seed("This is an amazing platform! Love the design and functionality.", 15, 2, time.Date(2024, 12, 14, 10, 0, 0, 0, time.UTC))
	b.seed("Looking forward to the next drop! When can we expect it?", 8, 1, time.Date(2024, 12, 14, 11, 30, 0, 0, time.UTC))
	return b
}

func (b *Board) seed(content string, likes, dislikes int, ts time.Time) {
	p := b.add(content, ts)
	p.likes, p.dislikes = likes, dislikes
}

// add must be called with mu held or before the board is shared.
func (b *Board) add(content string, ts time.Time) *post {
	p := &post{
		id:        b.nextID,
		content:   content,
		timestamp: ts,
		votes:     map[string]Vote{},
	}
	b.nextID++
	b.posts = append([]*post{p}, b.posts...)
	return p
}

// Create adds a post with zero votes in front of the board.
func (b *Board) Create(content string) (Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Post{}, ErrEmptyContent
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.add(content, b.now()).view(""), nil
}

// Vote toggles voter's vote on a post. Repeating the current vote clears it,
// the opposite vote replaces it.
func (b *Board) Vote(id int64, voter string, v Vote) (Post, error) {
	if v != VoteLike && v != VoteDislike {
		return Post{}, ErrInvalidVote
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.find(id)
	if p == nil {
		return Post{}, ErrPostNotFound
	}

	prev := p.votes[voter]
	switch prev {
	case VoteLike:
		p.likes--
	case VoteDislike:
		p.dislikes--
	}
	if prev == v {
		delete(p.votes, voter)
		return p.view(voter), nil
	}
	if v == VoteLike {
		p.likes++
	} else {
		p.dislikes++
	}
	p.votes[voter] = v
	return p.view(voter), nil
}

// List returns every post in the requested order with voter's own votes.
func (b *Board) List(voter string, order Order) ([]Post, error) {
	if order == "" {
		order = OrderTrending
	}
	if order != OrderTrending && order != OrderCurrent {
		return nil, ErrInvalidOrder
	}
	b.mu.Lock()
	out := make([]Post, len(b.posts))
	for i, p := range b.posts {
		out[i] = p.view(voter)
	}
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if order == OrderTrending {
			return out[i].Likes-out[i].Dislikes > out[j].Likes-out[j].Dislikes
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Get returns one post as seen by voter.
func (b *Board) Get(id int64, voter string) (Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.find(id)
	if p == nil {
		return Post{}, ErrPostNotFound
	}
	return p.view(voter), nil
}

func (b *Board) find(id int64) *post {
	for _, p := range b.posts {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (p *post) view(voter string) Post {
	return Post{
		ID:        p.id,
		Content:   p.content,
		Likes:     p.likes,
		Dislikes:  p.dislikes,
		Timestamp: p.timestamp,
		UserVote:  p.votes[voter],
	}
}
