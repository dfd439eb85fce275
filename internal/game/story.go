package game

type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
)

// StoryElement is one contribution to a story: either a piece of text or a
// reference to a stored image. Immutable once written.
type StoryElement struct {
	Kind    ElementKind
	Content string // text body, or stored image reference
}

func TextElement(text string) StoryElement {
	return StoryElement{Kind: ElementText, Content: text}
}

func ImageElement(ref string) StoryElement {
	return StoryElement{Kind: ElementImage, Content: ref}
}

// Story is an ordered sequence of elements, one per round. An element is nil
// until the assigned player submits for that round.
type Story struct {
	elements []*StoryElement
}

// StorySet holds all stories of one game: one story per player slot, each
// with one element slot per round.
type StorySet struct {
	stories []*Story
}

func NewStorySet(count, rounds int) *StorySet {
	ss := &StorySet{stories: make([]*Story, count)}
	for i := range ss.stories {
		ss.stories[i] = &Story{elements: make([]*StoryElement, rounds)}
	}
	return ss
}

func (ss *StorySet) Len() int { return len(ss.stories) }

func (ss *StorySet) SetElement(storyIdx, round int, el StoryElement) error {
	s := ss.stories[storyIdx]
	if s.elements[round] != nil {
		return ErrElementFilled
	}
	s.elements[round] = &el
	return nil
}

// ElementAt returns the element of the given story at the given round, or nil
// if it has not been filled yet.
func (ss *StorySet) ElementAt(storyIdx, round int) *StoryElement {
	return ss.stories[storyIdx].elements[round]
}

// RoundComplete reports whether every story has an element for the given round.
func (ss *StorySet) RoundComplete(round int) bool {
	for _, s := range ss.stories {
		if s.elements[round] == nil {
			return false
		}
	}
	return true
}
