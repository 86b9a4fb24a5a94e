package types

// Message is the wire envelope of one chat message. Content is
// base64(iv || AES-GCM(plaintext)) and Signature is base64(RSA-PSS(plaintext)).
type Message struct {
	ID        string `json:"id,omitempty"`
	Sender    PeerID `json:"sender"`
	Receiver  PeerID `json:"receiver"`
	Content   string `json:"content"`
	Signature string `json:"signature"`
	Date      string `json:"date"`
}

// DeliveredMessage is a message after local processing, as kept in history
// and shown to the user.
type DeliveredMessage struct {
	ID       string `json:"id"`
	Peer     PeerID `json:"peer"`
	From     PeerID `json:"from"`
	To       PeerID `json:"to"`
	Text     string `json:"text"`
	Verified bool   `json:"verified"`
	Outgoing bool   `json:"outgoing"`
	Date     string `json:"date"`
}
