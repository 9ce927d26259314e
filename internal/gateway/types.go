package gateway

// Wire shapes for the Whapi-style messaging gateway. Field names track
// the remote JSON exactly; the service layer maps these onto the
// console's view models.

type Chat struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	LastMessage *Message `json:"last_message,omitempty"`
}

type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chat_id,omitempty"`
	FromMe    bool          `json:"from_me"`
	Type      string        `json:"type"`
	Timestamp int64         `json:"timestamp"`
	Text      *TextContent  `json:"text,omitempty"`
	Image     *ImageContent `json:"image,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

type ImageContent struct {
	ID      string `json:"id,omitempty"`
	Link    string `json:"link,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type Group struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Size int    `json:"size,omitempty"`
}

type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	PushName string `json:"pushname,omitempty"`
}

type Newsletter struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type chatsResponse struct {
	Chats []Chat `json:"chats"`
	Total int    `json:"total"`
}

type messagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

type sendMessageRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendMessageResponse struct {
	Sent    bool    `json:"sent"`
	Message Message `json:"message"`
}

type forwardMessageRequest struct {
	To string `json:"to"`
}

type groupsResponse struct {
	Groups []Group `json:"groups"`
	Total  int     `json:"total"`
}

type contactsResponse struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
}

type newslettersResponse struct {
	Newsletters []Newsletter `json:"newsletters"`
	Total       int          `json:"total"`
}

type mediaResponse struct {
	Link string `json:"link"`
}
