package procnet

// runAsynchronous implements blocking receive on a process's single
// endpoint (validated by AsyncRequiresSingleEndpoint — see def.go). A
// Break from handle_message terminates the process outright, unlike the
// polling kinds where it only closes that one endpoint, since there is
// nothing else left to poll. A process with no Update hook only handles
// messages; the per-messages_per_update update step is skipped.
func runAsynchronous(p *Process, open *openSet) {
	cid := open.order[0]
	ep := p.endpoints[cid]

	messagesPerUpdate := p.spec.Params.MessagesPerUpdate
	if messagesPerUpdate <= 0 {
		messagesPerUpdate = 1
	}
	messagesSinceUpdate := 0

	for {
		env, err := ep.Recv()
		if err != nil {
			p.log.Debug("endpoint disconnected", "process_id", p.id, "channel_id", cid)
			return
		}

		if p.spec.HandleMessage(p, env) == Break {
			return
		}

		messagesSinceUpdate++
		if messagesSinceUpdate == messagesPerUpdate {
			if p.spec.Update != nil && p.spec.Update(p) == Break {
				return
			}
			messagesSinceUpdate = 0
		}
	}
}
